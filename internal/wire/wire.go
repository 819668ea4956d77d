// Package wire provides dependency injection for the mazebot application.
// Run history services are singletons with lazy initialization; robot-bound
// services are built per command because the robot depends on flags.
package wire

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	cliadapter "github.com/example/mazebot/internal/adapters/cli"
	"github.com/example/mazebot/internal/adapters/serial"
	"github.com/example/mazebot/internal/adapters/sim"
	"github.com/example/mazebot/internal/adapters/sqlite"
	"github.com/example/mazebot/internal/app"
	"github.com/example/mazebot/internal/config"
	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/db"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/ports/secondary"
)

var (
	runRepo    secondary.RunRepository
	eventLog   secondary.EventLog
	runService primary.RunService
	once       sync.Once
)

// UseDatabase points the run history at path. Must be called before any
// service is requested; an empty path keeps the default.
func UseDatabase(path string) {
	if path != "" {
		db.SetPath(path)
	}
}

// RunService returns the singleton RunService instance.
func RunService() primary.RunService {
	once.Do(initServices)
	return runService
}

// initServices initializes the persistence-backed services.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	runRepo = sqlite.NewRunRepository(database)
	eventLog = sqlite.NewEventLogAdapter(database)
	runService = app.NewRunService(runRepo, eventLog)
}

// Robot is an opened robot with its classifier.
type Robot struct {
	Ports      secondary.Robot
	Classifier app.Classifier
	close      func() error
}

// Close releases the robot connection.
func (r *Robot) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// SimRobot places a simulated robot in world at start.
// The simulator reports colour codes, so the colour classifier is always used.
func SimRobot(cfg *config.Config, world *sim.World, start pose.Pose) (*Robot, error) {
	if cfg.Sensor.Mode == config.SensorDistance {
		return nil, fmt.Errorf("the simulator has no distance sensor; set sensor.mode to %s", config.SensorColor)
	}
	c, err := cfg.ColorClassifier()
	if err != nil {
		return nil, err
	}
	r, err := sim.NewRobot(world, start, sim.Options{})
	if err != nil {
		return nil, err
	}
	return &Robot{Ports: r.Ports(), Classifier: c}, nil
}

// SerialRobot opens the bridge to a physical robot on cfg.Serial.Device.
func SerialRobot(cfg *config.Config) (*Robot, error) {
	c, err := Classifier(cfg)
	if err != nil {
		return nil, err
	}

	portCfg := serial.DefaultConfig(cfg.Serial.Device)
	portCfg.Baud = cfg.Serial.Baud
	portCfg.ReadTimeout = cfg.Serial.ReadTimeoutMS
	port, err := serial.Open(portCfg)
	if err != nil {
		return nil, err
	}

	bridge, err := serial.NewBridge(port, serial.BridgeConfig{
		Speed:        cfg.Calibration.Speed,
		SensorMode:   cfg.Sensor.Mode,
		ReplyTimeout: time.Duration(cfg.Serial.ReplyTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		port.Close()
		return nil, err
	}
	return &Robot{Ports: bridge.Ports(), Classifier: c, close: bridge.Close}, nil
}

// Classifier returns the classifier for the configured sensor mode.
func Classifier(cfg *config.Config) (app.Classifier, error) {
	if cfg.Sensor.Mode == config.SensorDistance {
		return classify.DistanceClassifier{ThresholdMM: cfg.Sensor.DistanceThresholdMM}, nil
	}
	return cfg.ColorClassifier()
}

// RunAdapter returns a RunAdapter driving robot and writing to stdout.
func RunAdapter(cfg *config.Config, robot *Robot, save bool) *cliadapter.RunAdapter {
	return RunAdapterWithOutput(cfg, robot, save, os.Stdout)
}

// RunAdapterWithOutput returns a RunAdapter writing to the given output.
// With save off the database is never opened.
func RunAdapterWithOutput(cfg *config.Config, robot *Robot, save bool, out io.Writer) *cliadapter.RunAdapter {
	var (
		runs   secondary.RunRepository
		events secondary.EventLog
	)
	if save {
		once.Do(initServices)
		runs, events = runRepo, eventLog
	}

	explorer := app.NewExplorerService(robot.Ports, robot.Classifier, cfg.Calibration, runs, events)
	navigator := app.NewNavigatorService(robot.Ports, robot.Classifier, cfg.Calibration, runs, events)
	return cliadapter.NewRunAdapter(explorer, navigator, nil, out)
}

// HistoryAdapter returns a RunAdapter for stored runs writing to stdout.
func HistoryAdapter() *cliadapter.RunAdapter {
	return HistoryAdapterWithOutput(os.Stdout)
}

// HistoryAdapterWithOutput returns a RunAdapter for stored runs writing to the given output.
func HistoryAdapterWithOutput(out io.Writer) *cliadapter.RunAdapter {
	once.Do(initServices)
	return cliadapter.NewRunAdapter(nil, nil, runService, out)
}
