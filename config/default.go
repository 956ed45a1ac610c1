package config

import (
	_ "embed"
)

// DefaultConfigYAML 嵌入的默认配置，可被外部 config.yaml 覆盖
//
//go:embed default.yaml
var DefaultConfigYAML []byte
