// Package main runs a scripted destruction scenario on the headless host.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/body"
	"github.com/Faultbox/shatter/internal/config"
	"github.com/Faultbox/shatter/internal/fragment"
	"github.com/Faultbox/shatter/internal/heal"
	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/sim"
	"github.com/Faultbox/shatter/internal/vst"
	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if config.SaveRequested() {
		path, err := config.WriteEffective(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== shatter vstsim ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Address)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("scenario failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("scenario finished")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("serving metrics", zap.String("address", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Named("vstsim")
	dc := cfg.Destruction
	tree, err := vst.Build(mesh.Box(cfg.Simulation.BoxSize, dc.TextureScale), vst.BuildOptions{
		Height:   dc.TreeHeight,
		Seed:     dc.Seed,
		MaxTries: dc.MaxSampleTries,
		Split:    mesh.SplitOptions{TextureScale: dc.TextureScale},
	})
	if err != nil {
		return fmt.Errorf("building tree: %w", err)
	}
	log.Info("tree built", zap.Int("height", tree.Height()), zap.Int("nodes", tree.Len()))

	world := sim.NewWorld(cfg.Simulation.LinearDamping)
	factory := &body.Factory{Physics: world, Scene: world, MinMass: dc.MinMass}
	obj := body.NewObject("crate", tree, dc.Density)

	fc := cfg.Fragmentation
	adjacent, err := fragment.EstimatorByName(fc.Estimator, fc.Growth)
	if err != nil {
		return err
	}
	frag := fragment.NewEngine(factory, world, fragment.Options{
		ApplyImpulse:     fc.ApplyImpulse,
		ImpulseStrength:  fc.ImpulseStrength,
		Adjacent:         adjacent,
		PruneInterior:    dc.PruneInterior,
		StrictInvariants: dc.StrictInvariants,
		Seed:             dc.Seed,
		Shallow:          fragment.Pass{Radius: fc.ShallowRadius, Depth: fc.ShallowDepth},
		Deep:             fragment.Pass{Radius: fc.DeepRadius, Depth: fc.DeepDepth},
	})
	healer := heal.NewEngine(factory, world, heal.Options{
		LevelsUp: cfg.Healing.LevelsUp,
		Duration: cfg.Healing.Duration,
	})
	host := sim.NewHost(world, frag, healer)

	// Rest the crate on the floor, turned a little about the vertical.
	home := pmath.TransformAt(pmath.Vec3{Y: cfg.Simulation.BoxSize.Y / 2})
	home.Rotation = pmath.QuatFromAxisAngle(pmath.Up, math.Pi/6)
	root, err := factory.SpawnRoot(obj, home)
	if err != nil {
		return fmt.Errorf("spawning %s: %w", obj.Name, err)
	}

	tick := cfg.Simulation.TickInterval()
	steps := func(n int) error {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := host.Step(tick); err != nil {
				log.Warn("step failed", zap.Error(err))
			}
		}
		return nil
	}

	// Hit one corner of the box.
	corner := root.WorldCenter(vst.RootID).Add(cfg.Simulation.BoxSize.Scale(0.25))
	if err := host.Handle(ctx, sim.Event{Action: sim.ActionFragment, Point: corner}); err != nil {
		log.Warn("detonation failed", zap.Error(err))
	}
	if err := steps(cfg.Simulation.TickRate); err != nil {
		return err
	}
	log.Info("after detonation",
		zap.Int("bodies", len(world.Bodies())),
		zap.Int("disintegrated", len(world.Disintegrated())))

	if err := host.Handle(ctx, sim.Event{Action: sim.ActionUnfragment, Point: corner, Target: &home}); err != nil {
		if errors.Is(err, sim.ErrNoTarget) {
			log.Info("nothing left to heal")
			return nil
		}
		return err
	}
	for host.Healing() > 0 {
		if err := steps(1); err != nil {
			return err
		}
		time.Sleep(tick)
	}
	if err := host.Wait(); err != nil {
		return fmt.Errorf("healing: %w", err)
	}

	for _, r := range host.Healed() {
		if r.Healed == nil {
			log.Info("heal left bodies unchanged", zap.Uint32("node", uint32(r.Ancestor)))
			continue
		}
		log.Info("healed",
			zap.String("body", r.Healed.Name),
			zap.Uint32("node", uint32(r.Ancestor)),
			zap.Int("merged", len(r.Gathered)),
			zap.Int("interior_faces", interiorFaces(world.Surfaces(r.Healed))))
	}
	log.Info("after heal",
		zap.Int("bodies", len(world.Bodies())),
		zap.Int("registered", obj.Registry.Len()))
	return nil
}

func interiorFaces(surfaces []int) int {
	n := 0
	for _, s := range surfaces {
		if s == mesh.Interior {
			n++
		}
	}
	return n
}
