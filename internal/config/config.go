/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config loads and validates the daemon's JSON configuration file,
// following the viper-backed UnmarshalKey pattern in config/model.go
// and validating the result with go-playground/validator, the way
// database/gorm/config.go validates its own Config.
package config

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sabouaram/xmldbserver/internal/xerrors"
)

// ServerConfig is the "servive" block (ip/port/maxConnection).
type ServerConfig struct {
	IP            string `mapstructure:"ip" validate:"required,ip4_addr"`
	Port          int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	MaxConnection int    `mapstructure:"maxConnection" validate:"required,gt=0"`
}

// DatabaseConfig is the "database" block (path to the sqlite file).
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// Config is the top-level, JSON-decoded configuration document.
type Config struct {
	Server   ServerConfig   `mapstructure:"servive"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Default returns the daemon's documented configuration defaults,
// applied before the config file is merged in so a partial file still
// yields a runnable daemon.
func Default() Config {
	return Config{
		Server: ServerConfig{
			IP:            "0.0.0.0",
			Port:          9090,
			MaxConnection: 50,
		},
		Database: DatabaseConfig{
			Path: "./xmldbserver.db",
		},
	}
}

var validate = validator.New()

// Load reads the JSON configuration file at path, merges it onto Default(),
// and validates the result. Unreadable or malformed files surface as
// xerrors.CodeConfigUnreadable; failed struct validation surfaces as
// xerrors.CodeConfigInvalid.
func Load(path string) (Config, xerrors.Error) {
	def := Default()

	vip := viper.New()
	vip.SetConfigFile(path)
	vip.SetConfigType("json")

	vip.SetDefault("servive.ip", def.Server.IP)
	vip.SetDefault("servive.port", def.Server.Port)
	vip.SetDefault("servive.maxConnection", def.Server.MaxConnection)
	vip.SetDefault("database.path", def.Database.Path)

	if err := vip.ReadInConfig(); err != nil {
		return Config{}, xerrors.CodeConfigUnreadable.Error(err)
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return Config{}, xerrors.CodeConfigUnreadable.Error(err)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, xerrors.CodeConfigInvalid.Error(err)
	}

	return cfg, nil
}

// Addr renders the listen address as host:port, as net.Listen expects it.
func (c Config) Addr() string {
	ip := strings.TrimSpace(c.Server.IP)
	if ip == "" {
		ip = "0.0.0.0"
	}
	return ip + ":" + strconv.Itoa(c.Server.Port)
}
