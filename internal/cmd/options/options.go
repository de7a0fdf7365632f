package options

import (
	"fmt"
	"net/http"

	"github.com/dduksang/deploymon/internal/alert"
	"github.com/dduksang/deploymon/internal/checks"
	"github.com/dduksang/deploymon/internal/config"
	"github.com/dduksang/deploymon/internal/nilcheck"
)

type CmdOption func(*CmdOptions) error

// CmdOptions holds the collaborators commands use to talk to the outside world.
type CmdOptions struct {
	// EnvLookup resolves configuration keys, nil means the process environment.
	EnvLookup config.LookupFunc

	ChecksLoader checks.Loader

	// HTTPClient is used for probes and alert delivery, nil means a client per component.
	HTTPClient *http.Client

	TelegramAPI string
}

func defaultOptions() CmdOptions {
	return CmdOptions{
		ChecksLoader: &checks.FileLoader{},
		TelegramAPI:  alert.DefaultTelegramAPI,
	}
}

func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}
	return opts, nil
}

func WithEnvLookup(lookup config.LookupFunc) CmdOption {
	return func(o *CmdOptions) error {
		if lookup == nil {
			return fmt.Errorf("env lookup cannot be nil")
		}
		o.EnvLookup = lookup
		return nil
	}
}

func WithChecksLoader(l checks.Loader) CmdOption {
	return func(o *CmdOptions) error {
		if nilcheck.IsNil(l) {
			return fmt.Errorf("checks loader cannot be nil")
		}
		o.ChecksLoader = l
		return nil
	}
}

func WithHTTPClient(c *http.Client) CmdOption {
	return func(o *CmdOptions) error {
		o.HTTPClient = c
		return nil
	}
}

func WithTelegramAPI(baseURL string) CmdOption {
	return func(o *CmdOptions) error {
		if baseURL == "" {
			return fmt.Errorf("telegram API URL cannot be empty")
		}
		o.TelegramAPI = baseURL
		return nil
	}
}
