package inits

import (
	"go.uber.org/zap"
)

func Logger(debugMode bool) (*zap.Logger, error) {
	if debugMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
