// Copyright 2026 xultaeculcis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package settings loads blob store credentials and environment
// information. Values come from command line flags bound to ASTRO_TOOLS_*
// environment variables, an optional .env file and an optional YAML file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/xultaeculcis/astrotools/bucket/config"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix       = "ASTRO_TOOLS_"
	NestedDelimiter = "__"

	DefaultEnvironment = "local"
	DefaultDotEnvFile  = ".env"
)

type BlobSettings struct {
	Provider    string `yaml:"provider"`
	AccountName string `yaml:"account_name"`
	AccountKey  string `yaml:"account_key"`
	Endpoint    string `yaml:"endpoint"`
	Region      string `yaml:"region"`
}

type Settings struct {
	Environment string       `yaml:"environment"`
	Blob        BlobSettings `yaml:"blob"`
}

// ConfigurationError lists the settings that are missing or invalid.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required settings: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid settings: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// EnvName is the prefixed variable for a nested setting, for example
// ASTRO_TOOLS_BLOB__ACCOUNT_NAME.
func EnvName(path ...string) string {
	return EnvPrefix + strings.Join(path, NestedDelimiter)
}

type flagger interface {
	Flag(name, help string) *kingpin.FlagClause
}

// Bind registers one flag per setting on app or a command. Every flag
// falls back to its ASTRO_TOOLS_* environment variable. The returned value
// is filled in when the command line is parsed and is meant to be passed
// to Load as overrides.
func Bind(app flagger) *Settings {
	s := &Settings{}
	app.Flag("environment", "Deployment environment name. [default: "+DefaultEnvironment+"]").
		Envar(EnvName("ENVIRONMENT")).StringVar(&s.Environment)
	app.Flag("provider", "Blob store provider. ["+config.ProviderAzure+" or "+config.ProviderAWS+", default: "+config.DefaultProvider+"]").
		Envar(EnvName("BLOB", "PROVIDER")).StringVar(&s.Blob.Provider)
	app.Flag("account_name", "Storage account name or access key id.").
		Envar(EnvName("BLOB", "ACCOUNT_NAME")).StringVar(&s.Blob.AccountName)
	app.Flag("account_key", "Storage account key or secret access key.").
		Envar(EnvName("BLOB", "ACCOUNT_KEY")).StringVar(&s.Blob.AccountKey)
	app.Flag("endpoint", "Blob service endpoint, for emulators and S3-compatible stores.").
		Envar(EnvName("BLOB", "ENDPOINT")).StringVar(&s.Blob.Endpoint)
	app.Flag("region", "Bucket region for the "+config.ProviderAWS+" provider. [default: "+config.DefaultRegion+"]").
		Envar(EnvName("BLOB", "REGION")).StringVar(&s.Blob.Region)
	return s
}

// LoadDotEnv exports the variables of a .env file into the process
// environment. Variables that are already set are left alone, and a
// missing file is not an error. It must run before the command line is
// parsed for the values to reach the bound flags.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads file, when not empty, overlays every non-empty field of
// overrides and fills in defaults.
func Load(file string, overrides Settings) (Settings, error) {
	var s Settings
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return s, err
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("settings file %s: %w", file, err)
		}
	}
	override(&s.Environment, overrides.Environment)
	override(&s.Blob.Provider, overrides.Blob.Provider)
	override(&s.Blob.AccountName, overrides.Blob.AccountName)
	override(&s.Blob.AccountKey, overrides.Blob.AccountKey)
	override(&s.Blob.Endpoint, overrides.Blob.Endpoint)
	override(&s.Blob.Region, overrides.Blob.Region)

	if s.Environment == "" {
		s.Environment = DefaultEnvironment
	}
	if s.Blob.Provider == "" {
		s.Blob.Provider = config.DefaultProvider
	}
	if s.Blob.Region == "" {
		s.Blob.Region = config.DefaultRegion
	}
	return s, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// RequireBlob checks the settings needed by blob commands.
func (s Settings) RequireBlob() error {
	var configErr ConfigurationError
	if s.Blob.AccountName == "" {
		configErr.Missing = append(configErr.Missing, EnvName("BLOB", "ACCOUNT_NAME"))
	}
	if s.Blob.AccountKey == "" {
		configErr.Missing = append(configErr.Missing, EnvName("BLOB", "ACCOUNT_KEY"))
	}
	switch s.Blob.Provider {
	case config.ProviderAzure, config.ProviderAWS:
	default:
		configErr.Invalid = append(configErr.Invalid, fmt.Sprintf("%s=%q", EnvName("BLOB", "PROVIDER"), s.Blob.Provider))
	}
	if len(configErr.Missing) > 0 || len(configErr.Invalid) > 0 {
		return &configErr
	}
	return nil
}

func (s Settings) BucketConfig(container string) *config.Config {
	if container == "" {
		container = config.DefaultContainer
	}
	return &config.Config{
		Provider:    s.Blob.Provider,
		Container:   container,
		Region:      s.Blob.Region,
		Endpoint:    s.Blob.Endpoint,
		AccountName: s.Blob.AccountName,
		AccountKey:  s.Blob.AccountKey,
	}
}
