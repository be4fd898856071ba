package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/touchgest/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TOUCHGEST_ADDR", ":9090")
			_ = os.Setenv("TOUCHGEST_DEVICE", "/dev/input/event5")
			_ = os.Setenv("TOUCHGEST_GRAB", "true")
			_ = os.Setenv("TOUCHGEST_MIN_EDGE_DISTANCE", "12.5")
			_ = os.Setenv("TOUCHGEST_ACTION_WORKERS", "4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Device, convey.ShouldEqual, "/dev/input/event5")
				convey.So(cfg.Grab, convey.ShouldBeTrue)
				convey.So(cfg.MinEdgeDistance, convey.ShouldEqual, 12.5)
				convey.So(cfg.ActionWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.ActionQueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# daemon settings
log_level: debug
rules_path: /home/user/.config/touchgest/gestures.conf  # per-user rules
calibration_path: /home/user/.config/touchgest/dims
calibration_samples: 3
action_queue_size: 8
action_timeout_ms: 2500
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOUCHGEST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.RulesPath, convey.ShouldEqual, "/home/user/.config/touchgest/gestures.conf")
				convey.So(cfg.CalibrationPath, convey.ShouldEqual, "/home/user/.config/touchgest/dims")
				convey.So(cfg.CalibrationSamples, convey.ShouldEqual, 3)
				convey.So(cfg.ActionQueueSize, convey.ShouldEqual, 8)
				convey.So(cfg.ActionTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.Shell, convey.ShouldEqual, "/bin/sh")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
action_workers: 3
shell: /bin/bash
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOUCHGEST_CONFIG", tmpFile)
			_ = os.Setenv("TOUCHGEST_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")      // Overridden by env
				convey.So(cfg.ActionWorkers, convey.ShouldEqual, 3)   // From file
				convey.So(cfg.Shell, convey.ShouldEqual, "/bin/bash") // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOUCHGEST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TOUCHGEST_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TOUCHGEST_ACTION_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file sets a value that fails validation", func() {
			tmpFile := createTempConfigFile("action_workers: 0\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOUCHGEST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "action_workers must be positive")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TOUCHGEST_CONFIG",
		"TOUCHGEST_ADDR",
		"TOUCHGEST_DEVICE",
		"TOUCHGEST_GRAB",
		"TOUCHGEST_MIN_EDGE_DISTANCE",
		"TOUCHGEST_ACTION_WORKERS",
		"TOUCHGEST_ACTION_QUEUE_SIZE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "touchgest-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
