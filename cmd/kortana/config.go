// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.
//
// The Kortana library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Kortana library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Kortana library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"os"

	"github.com/kortanachain/kortana/conf"
)

// DefaultConfig is the configuration used when no --config file is given;
// loadConfigFile replaces it with the merged file contents.
var DefaultConfig = conf.DefaultConfig()

// cfgFile holds the --config flag's value.
var cfgFile string

// nodeKeyHex and etherbase hold the raw --node.key / --etherbase flag
// values; nothing in this package parses them.
var nodeKeyHex string
var etherbase string

// loadConfigFile merges a YAML file on top of DefaultConfig, if one was
// given via --config.
func loadConfigFile() error {
	if cfgFile == "" {
		return nil
	}
	data, err := os.ReadFile(cfgFile)
	if err != nil {
		return err
	}
	merged, err := conf.LoadConfig(data)
	if err != nil {
		return err
	}
	DefaultConfig = merged
	return nil
}
