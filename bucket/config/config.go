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

package config

const (
	ProviderAzure = "azure"
	ProviderAWS   = "aws"
)

const (
	DefaultProvider  = ProviderAzure
	DefaultContainer = "datasets"
	DefaultRegion    = "us-east-1"
)

type Config struct {
	Provider    string
	Container   string
	Region      string
	Endpoint    string
	AccountName string
	AccountKey  string
}

func (c *Config) IsAzure() bool {
	return c.Provider == ProviderAzure
}

func (c *Config) IsAWS() bool {
	return c.Provider == ProviderAWS
}
