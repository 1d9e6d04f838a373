package env

import (
	"time"
	_ "time/tzdata"

	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

var variables = new(Environment)

// Process the environment variables set for lgflow.
func Process() error {
	if err := envconfig.Process("lgflow", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	if _, err := time.LoadLocation(variables.Timezone); err != nil {
		return errors.Wrap(err, "failed to load timezone")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by lgflow.
type Environment struct {
	LogLevel           string        `default:"info" split_words:"true"`
	Port               int           `default:"8080"`
	ShutdownTimeout    time.Duration `default:"10s" split_words:"true"`
	Store              string        `default:"sql"`
	DatabaseType       string        `default:"sqlite" split_words:"true"`
	DatabaseDSN        string        `default:"lgflow.db" split_words:"true"`
	CSVPath            string        `default:"lgflow.csv" envconfig:"CSV_PATH"`
	RedisAddr          string        `default:"localhost:6379" split_words:"true"`
	RedisKey           string        `default:"lgflow:tasks" split_words:"true"`
	Concurrency        string        `default:"optimistic"`
	IDScheme           string        `default:"sequential" envconfig:"ID_SCHEME"`
	Timezone           string        `default:"Africa/Cairo"`
	DegradeOnLoadError bool          `default:"true" split_words:"true"`
	Directory          string        `default:"sql"`
	UsersFile          string        `default:"users.yaml" split_words:"true"`
	BackupCron         string        `default:"" split_words:"true"`
	BackupPath         string        `default:"lgflow-backup.csv" split_words:"true"`
}

// Location resolves the configured timezone, falling back to UTC.
func (e Environment) Location() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
