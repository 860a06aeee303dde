package inits

import (
	"fmt"
	"os"
	"remote-connection-manager/app/launcher/config"
	"strings"
	"time"
)

func Config() (*config.Config, error) {
	var cfg config.Config
	{
		mode, exist := os.LookupEnv("MODE")
		cfg.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if serverEp, exist := os.LookupEnv("SERVER_ENDPOINT"); !exist || serverEp == "" {
		return nil, fmt.Errorf("SERVER_ENDPOINT environment variable not set")
	} else {
		cfg.ServerEndpoint = serverEp
	}

	cfg.Token = os.Getenv("RCM_TOKEN")
	cfg.Username = os.Getenv("RCM_USERNAME")
	cfg.Password = os.Getenv("RCM_PASSWORD")
	if cfg.Token == "" && (cfg.Username == "" || cfg.Password == "") {
		return nil, fmt.Errorf("RCM_TOKEN or RCM_USERNAME and RCM_PASSWORD should be set")
	}

	if timeoutStr, exist := os.LookupEnv("REQUEST_TIMEOUT"); !exist || timeoutStr == "" {
		cfg.RequestTimeout = 10 * time.Second
	} else if timeout, err := time.ParseDuration(timeoutStr); err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT should be a valid duration")
	} else {
		cfg.RequestTimeout = timeout
	}

	switch output := strings.ToLower(os.Getenv("OUTPUT")); output {
	case "", config.OutputJSON:
		cfg.Output = config.OutputJSON
	case config.OutputCommand:
		cfg.Output = output
	default:
		return nil, fmt.Errorf("OUTPUT should be one of json, command")
	}

	return &cfg, nil
}
