package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nebulapoi/poi-gateway/internal/storage/gormrepo"
	"github.com/nebulapoi/poi-gateway/internal/storage/models"
)

// Manifest 内置图案种子清单（YAML）
type Manifest struct {
	Patterns []Entry `yaml:"patterns"`
}

// Entry 单条种子图案
// data 即图案上传帧（0x04）的负载字节：type, color1(rgb), color2(rgb), speed
type Entry struct {
	Slot int16  `yaml:"slot"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Data []int  `yaml:"data"`
}

// Load 读取并校验种子清单
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse seed manifest: %w", err)
	}
	for i, e := range m.Patterns {
		if e.Name == "" {
			return nil, fmt.Errorf("seed entry %d: missing name", i)
		}
		for _, v := range e.Data {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("seed entry %q: byte out of range: %d", e.Name, v)
			}
		}
	}
	return &m, nil
}

// Apply 将种子图案写入图案库（按槽位覆盖）
func Apply(ctx context.Context, m *Manifest, repo *gormrepo.Repository) error {
	for _, e := range m.Patterns {
		kind := e.Kind
		if kind == "" {
			kind = "procedural"
		}
		payload := make([]byte, len(e.Data))
		for i, v := range e.Data {
			payload[i] = byte(v)
		}
		p := &models.Pattern{
			Slot:    e.Slot,
			Name:    e.Name,
			Kind:    kind,
			Payload: payload,
			Builtin: true,
		}
		if err := repo.SavePattern(ctx, p); err != nil {
			return fmt.Errorf("seed pattern %q: %w", e.Name, err)
		}
	}
	return nil
}
