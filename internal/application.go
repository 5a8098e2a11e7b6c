package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/cube-tictactoe/internal/config"
	"github.com/rocketscienceinc/cube-tictactoe/internal/console"
	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/repository"
	"github.com/rocketscienceinc/cube-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/cube-tictactoe/internal/server"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport/websocket"
	"github.com/rocketscienceinc/cube-tictactoe/internal/usecase"
)

var (
	ErrNoDirectory = errors.New("host address is empty and redis is disabled")
	errHostLeft    = errors.New("host closed the connection")
)

const (
	defaultDirectoryTTL = 30 * time.Second
	unregisterTimeout   = 2 * time.Second
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var directory repository.HostRepository
	if conf.Redis.Enabled {
		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		directory = repository.NewHostRepository(redisStorage)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	var (
		player *usecase.Client
		err    error
	)
	if conf.IsHost() {
		player, err = runHost(groupCtx, group, logger, conf, directory)
	} else {
		player, err = runGuest(groupCtx, group, logger, conf, directory)
	}
	if err != nil {
		cancel()
		_ = group.Wait()
		return err
	}

	group.Go(func() error {
		return console.New(logger, player, os.Stdin, os.Stdout).Run(groupCtx)
	})

	err = group.Wait()
	switch {
	case errors.Is(err, console.ErrQuit):
		log.Info("Player left")
		return nil
	case errors.Is(err, errHostLeft):
		log.Info("Host closed the game")
		return nil
	default:
		return err
	}
}

// runHost starts the authority, the guest-facing server and the host's own
// participant, which talks to the authority over an in-memory channel.
func runHost(
	ctx context.Context,
	group *errgroup.Group,
	logger *slog.Logger,
	conf *config.Config,
	directory repository.HostRepository,
) (*usecase.Client, error) {
	log := logger.With("component", "app", "method", "runHost")
	self := entity.PlayerID(conf.PlayerID)

	authority := usecase.NewAuthority(logger, self,
		usecase.WithRateLimit(conf.Peer.RateLimit, conf.Peer.RateBurst),
		usecase.WithOutboxSize(conf.Peer.OutboxSize),
		usecase.WithObserver(func(view usecase.View) {
			log.Debug("state changed", "version", view.Version, "peers", view.Peers)
		}),
	)

	listener, err := server.Listen(conf.HTTPPort)
	if err != nil {
		return nil, err
	}

	group.Go(func() error { return authority.Run(ctx) })

	// the host's own channel holds the owner id before any guest can dial in
	hostEnd, localEnd := transport.Pipe()
	session, err := authority.Connect(ctx, self, hostEnd)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to attach host player: %w", err)
	}
	group.Go(func() error { return session.Serve(ctx) })

	group.Go(func() error { return server.New(logger, authority).Run(ctx, listener) })

	player := usecase.NewClient(logger, self, localEnd)
	group.Go(func() error { return player.Run(ctx) })

	if directory != nil {
		hostID := conf.HostID
		if hostID == "" {
			hostID = conf.PlayerID
		}

		addr := conf.Directory.AdvertiseAddr
		if addr == "" {
			addr = listener.Addr().String()
		}

		group.Go(func() error {
			return advertise(ctx, logger, directory, hostID, addr, conf.Directory.TTL)
		})
	}

	log.Info("Hosting game", "player", self, "addr", listener.Addr().String())

	return player, nil
}

func runGuest(
	ctx context.Context,
	group *errgroup.Group,
	logger *slog.Logger,
	conf *config.Config,
	directory repository.HostRepository,
) (*usecase.Client, error) {
	log := logger.With("component", "app", "method", "runGuest")
	self := entity.PlayerID(conf.PlayerID)

	addr, err := hostAddress(ctx, conf, directory)
	if err != nil {
		return nil, err
	}

	ch, err := websocket.Dial(ctx, addr, self)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host: %w", err)
	}

	player := usecase.NewClient(logger, self, ch)
	group.Go(func() error {
		defer func() {
			if closeErr := player.Close(); closeErr != nil {
				log.Debug("failed to close channel", "error", closeErr)
			}
		}()

		if runErr := player.Run(ctx); runErr != nil {
			return runErr
		}

		if ctx.Err() == nil {
			return errHostLeft
		}

		return nil
	})

	log.Info("Joined game", "player", self, "host", addr)

	return player, nil
}

func hostAddress(ctx context.Context, conf *config.Config, directory repository.HostRepository) (string, error) {
	if conf.HostAddr != "" {
		return conf.HostAddr, nil
	}

	if directory == nil {
		return "", ErrNoDirectory
	}

	addr, err := directory.Resolve(ctx, conf.HostID)
	if err != nil {
		return "", fmt.Errorf("failed to find host %q: %w", conf.HostID, err)
	}

	return addr, nil
}

// advertise keeps hostID pointing at addr until ctx is canceled, then removes
// the entry.
func advertise(
	ctx context.Context,
	logger *slog.Logger,
	directory repository.HostRepository,
	hostID, addr string,
	ttl time.Duration,
) error {
	log := logger.With("component", "app", "method", "advertise", "host", hostID)

	if ttl <= 0 {
		ttl = defaultDirectoryTTL
	}

	if err := directory.Register(ctx, hostID, addr, ttl); err != nil {
		return fmt.Errorf("failed to advertise host: %w", err)
	}

	log.Info("Host advertised", "addr", addr)

	defer func() {
		unregisterCtx, cancel := context.WithTimeout(context.Background(), unregisterTimeout)
		defer cancel()

		if err := directory.Unregister(unregisterCtx, hostID); err != nil {
			log.Warn("failed to unregister host", "error", err)
		}
	}()

	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := directory.Register(ctx, hostID, addr, ttl); err != nil && ctx.Err() == nil {
				log.Warn("failed to refresh host entry", "error", err)
			}
		}
	}
}
