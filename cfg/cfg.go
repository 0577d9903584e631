package cfg

import (
	"app/db"
	"app/internal/app/api"
	"app/internal/app/gateway"
	"app/pkg/auth"
	"app/pkg/resemble"
)

type Config struct {
	Api api.Config `yaml:"api"`

	Auth auth.Config `yaml:"auth"`

	Resemble resemble.Config `yaml:"resemble"`
	Gateway  gateway.Config  `yaml:"gateway"`

	DB db.Config `yaml:"db"`
}
