package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger. Production gets JSON output, everything
// else the console encoder.
func New(env string) *zap.SugaredLogger {
	var z *zap.Logger
	var err error
	if env == "production" {
		z, err = zap.NewProduction()
	} else {
		z, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return z.Sugar()
}
