// Package tool holds the catalog of assessment tools a campaign can share.
package tool

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/pulse/internal/config"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Tool struct {
	ID   string `mapstructure:"id" json:"id"`
	Name string `mapstructure:"name" json:"name"`
	Path string `mapstructure:"path" json:"path"`
}

func DefaultTools() []Tool {
	return []Tool{
		{ID: "team-health", Name: "Team Health Check"},
		{ID: "leadership-style", Name: "Leadership Style"},
		{ID: "working-preferences", Name: "Working Preferences"},
	}
}

// Catalog serves tool lookups from the latest valid tools file.
type Catalog struct {
	current atomic.Value // holds map[string]Tool
	log     *zap.Logger
}

func NewCatalog(cfg config.Config, log *zap.Logger) (*Catalog, error) {
	log = log.Named("tool.catalog")
	v := viper.New()

	if path := strings.TrimSpace(cfg.ToolsConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tools")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/pulse")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
		v.SetDefault("tools", toMaps(DefaultTools()))
	}

	var tools []Tool
	if err := v.UnmarshalKey("tools", &tools); err != nil {
		return nil, err
	}

	catalog := &Catalog{log: log}
	if err := catalog.Replace(tools); err != nil {
		return nil, err
	}

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated []Tool
			if err := v.UnmarshalKey("tools", &updated); err != nil {
				log.Warn("tool catalog reload failed", zap.Error(err))
				return
			}
			if err := catalog.Replace(updated); err != nil {
				log.Warn("invalid tool catalog ignored", zap.Error(err))
				return
			}
			log.Info("tool catalog reloaded", zap.String("file", filepath.Base(e.Name)), zap.Int("tools", len(updated)))
		})
	}

	return catalog, nil
}

// NewStaticCatalog builds a catalog that never reloads.
func NewStaticCatalog(tools []Tool) (*Catalog, error) {
	catalog := &Catalog{log: zap.NewNop()}
	if err := catalog.Replace(tools); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Replace validates tools and swaps them in atomically.
func (c *Catalog) Replace(tools []Tool) error {
	if len(tools) == 0 {
		return errors.New("tools cannot be empty")
	}

	index := make(map[string]Tool, len(tools))
	for _, item := range tools {
		item.ID = strings.TrimSpace(item.ID)
		item.Name = strings.TrimSpace(item.Name)
		if item.ID == "" || item.Name == "" {
			return fmt.Errorf("tool %q requires id and name", item.ID)
		}
		if _, dup := index[item.ID]; dup {
			return fmt.Errorf("duplicate tool id %q", item.ID)
		}
		item.Path = normalizePath(item.Path, item.Name)
		index[item.ID] = item
	}

	c.current.Store(index)
	return nil
}

func (c *Catalog) Lookup(id string) (Tool, bool) {
	index, _ := c.current.Load().(map[string]Tool)
	item, ok := index[strings.TrimSpace(id)]
	return item, ok
}

func (c *Catalog) List() []Tool {
	index, _ := c.current.Load().(map[string]Tool)
	out := make([]Tool, 0, len(index))
	for _, item := range index {
		out = append(out, item)
	}
	return out
}

func normalizePath(path, name string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/assessments/" + slug.Make(name)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}

func toMaps(tools []Tool) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, item := range tools {
		out = append(out, map[string]any{"id": item.ID, "name": item.Name, "path": item.Path})
	}
	return out
}
