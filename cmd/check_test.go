package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
	"github.com/dduksang/deploymon/internal/cmd/output"
	"github.com/dduksang/deploymon/internal/config"
	"github.com/dduksang/deploymon/internal/printer"
	"github.com/dduksang/deploymon/internal/runner"
)

func TestCheckCmd_Healthy(t *testing.T) {
	t.Parallel()

	target := newTarget(t)
	var out bytes.Buffer

	c := newCommand(t, NewCheckCmd, nil, &out, []string{target.URL})
	require.NoError(t, c.Execute())

	require.Contains(t, out.String(), "HEALTHY 5/5 (100%)")
	require.Contains(t, out.String(), "threshold 80%")
	require.Contains(t, out.String(), "Auth Check")
}

func TestCheckCmd_Unhealthy(t *testing.T) {
	t.Parallel()

	target := newTarget(t, "/community", "/api/news")
	var out bytes.Buffer

	c := newCommand(t, NewCheckCmd, nil, &out, []string{target.URL})
	err := c.Execute()
	require.ErrorIs(t, err, runner.ErrUnhealthy)

	require.Contains(t, out.String(), "UNHEALTHY 3/5 (60%)")
	require.Contains(t, out.String(), "  - Community:")
	require.Contains(t, out.String(), "  - News API:")
}

func TestCheckCmd_OneFailureIsStillHealthy(t *testing.T) {
	t.Parallel()

	target := newTarget(t, "/courses")
	var out bytes.Buffer

	c := newCommand(t, NewCheckCmd, nil, &out, []string{target.URL})
	require.NoError(t, c.Execute())
	require.Contains(t, out.String(), "HEALTHY 4/5 (80%)")
}

func TestCheckCmd_BaseURLFromEnv(t *testing.T) {
	t.Parallel()

	target := newTarget(t)
	var out bytes.Buffer

	c := newCommand(t, NewCheckCmd, map[string]string{config.EnvVarBaseURL: target.URL}, &out, nil)
	require.NoError(t, c.Execute())
	require.Contains(t, out.String(), "HEALTHY 5/5")
}

func TestCheckCmd_JSON(t *testing.T) {
	t.Parallel()

	target := newTarget(t, "/api/news")
	var out bytes.Buffer

	c := newCommand(t, NewCheckCmd, nil, &out, []string{target.URL, "--format", "json"})
	require.NoError(t, c.Execute())

	var payload output.ResultPayload[printer.VerdictResult]
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

	res := payload.Result
	require.True(t, res.Healthy)
	require.Equal(t, 4, res.HealthyCount)
	require.Equal(t, 5, res.TotalCount)
	require.InDelta(t, 0.8, res.Ratio, 1e-9)
	require.InDelta(t, config.DefaultHealthyThreshold, res.Threshold, 1e-9)
	require.Len(t, res.Checks, 5)
	require.Equal(t, "Homepage", res.Checks[0].Name)

	failed := res.Checks[3]
	require.Equal(t, "News API", failed.Name)
	require.False(t, failed.Healthy)
	require.NotNil(t, failed.StatusCode)
	require.Equal(t, 500, *failed.StatusCode)
}

func TestCheckCmd_YAML(t *testing.T) {
	t.Parallel()

	target := newTarget(t, "/", "/courses")
	var out bytes.Buffer

	c := newCommand(t, NewCheckCmd, nil, &out, []string{target.URL, "--format", "yaml"})
	require.ErrorIs(t, c.Execute(), runner.ErrUnhealthy)

	var payload struct {
		Result struct {
			Healthy      bool `yaml:"healthy"`
			HealthyCount int  `yaml:"healthy_count"`
		} `yaml:"result"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &payload))
	require.False(t, payload.Result.Healthy)
	require.Equal(t, 3, payload.Result.HealthyCount)
}

func TestCheckCmd_StructuredFormatsExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		format      string
		failing     []string
		wantHealthy bool
	}{
		{name: "json healthy", format: "json", wantHealthy: true},
		{name: "json unhealthy", format: "json", failing: []string{"/", "/courses"}},
		{name: "yaml healthy", format: "yaml", wantHealthy: true},
		{name: "yaml unhealthy", format: "yaml", failing: []string{"/community", "/api/news"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			target := newTarget(t, tc.failing...)
			var out bytes.Buffer
			c := newCommand(t, NewCheckCmd, nil, &out, []string{target.URL, "--format", tc.format})

			var err error
			require.NotPanics(t, func() { err = c.Execute() })
			if tc.wantHealthy {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, runner.ErrUnhealthy)
			}

			var payload struct {
				Result struct {
					Healthy bool `json:"healthy" yaml:"healthy"`
				} `json:"result" yaml:"result"`
			}
			if tc.format == "json" {
				require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
			} else {
				require.NoError(t, yaml.Unmarshal(out.Bytes(), &payload))
			}
			require.Equal(t, tc.wantHealthy, payload.Result.Healthy)
			require.NotContains(t, out.String(), "HEALTHY")
		})
	}
}

func TestCheckCmd_StructuredConfigError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := newCommand(t, NewCheckCmd, nil, &out, []string{"--format", "json"})
	err := c.Execute()
	require.ErrorIs(t, err, config.ErrMissingValue)

	var payload output.ErrorPayload
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	require.Contains(t, payload.Error, config.EnvVarBaseURL)
}

func TestCheckCmd_AlertsOnlyWhenRequested(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		failing    []string
		wantAlerts int
	}{
		{name: "unhealthy without flag", failing: []string{"/", "/courses"}, wantAlerts: 0},
		{name: "unhealthy with flag", args: []string{"--alert"}, failing: []string{"/", "/courses"}, wantAlerts: 1},
		{name: "healthy with flag", args: []string{"--alert"}, wantAlerts: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			target := newTarget(t, tc.failing...)
			alerts := newAlertCollector(t)
			env := map[string]string{config.EnvVarWebhookURL: alerts.srv.URL + "/hook"}

			var out bytes.Buffer
			c := newCommand(t, NewCheckCmd, env, &out, append([]string{target.URL}, tc.args...))
			_ = c.Execute()

			require.Len(t, alerts.Texts(), tc.wantAlerts)
			if tc.wantAlerts > 0 {
				require.True(t, alerts.Contains("Homepage"))
				require.True(t, alerts.Contains("Courses"))
			}
		})
	}
}

func TestCheckCmd_AlertsEveryChannel(t *testing.T) {
	t.Parallel()

	target := newTarget(t, "/", "/courses")
	alerts := newAlertCollector(t)
	env := map[string]string{
		config.EnvVarWebhookURL:     alerts.srv.URL + "/hook",
		config.EnvVarTelegramToken:  "123:abc",
		config.EnvVarTelegramChatID: "42",
	}

	var out bytes.Buffer
	c := newCommand(
		t,
		NewCheckCmd,
		env,
		&out,
		[]string{target.URL, "--alert"},
		cmdopts.WithTelegramAPI(alerts.srv.URL),
	)
	require.ErrorIs(t, c.Execute(), runner.ErrUnhealthy)

	require.Len(t, alerts.Texts(), 2)
	require.True(t, alerts.Contains("/bot123:abc/sendMessage"))
	require.True(t, alerts.Contains("/hook"))
}

func TestCheckCmd_AlertFailureDoesNotChangeExitCode(t *testing.T) {
	t.Parallel()

	target := newTarget(t)
	env := map[string]string{config.EnvVarWebhookURL: "http://127.0.0.1:1/unreachable"}

	var out bytes.Buffer
	c := newCommand(t, NewCheckCmd, env, &out, []string{target.URL, "--alert"})
	require.NoError(t, c.Execute())
}

func TestCheckCmd_ConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing base URL",
			wantErr: config.ErrMissingValue,
			wantMsg: config.EnvVarBaseURL,
		},
		{
			name:    "invalid base URL",
			args:    []string{"not a url"},
			wantErr: config.ErrInvalidValue,
		},
		{
			name:    "invalid probe timeout",
			env:     map[string]string{config.EnvVarProbeTimeout: "soon"},
			args:    []string{"https://dduksang.test"},
			wantErr: config.ErrInvalidValue,
			wantMsg: config.EnvVarProbeTimeout,
		},
		{
			name:    "invalid threshold",
			env:     map[string]string{config.EnvVarHealthyThreshold: "1.5"},
			args:    []string{"https://dduksang.test"},
			wantErr: config.ErrInvalidValue,
			wantMsg: config.EnvVarHealthyThreshold,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			c := newCommand(t, NewCheckCmd, tc.env, &out, tc.args)
			err := c.Execute()
			require.ErrorIs(t, err, config.ErrConfigLoadFailed)
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				require.ErrorContains(t, err, tc.wantMsg)
			}
			require.Empty(t, out.String())
		})
	}
}

func TestCheckCmd_InvalidFormat(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := newCommand(t, NewCheckCmd, nil, &out, []string{"https://dduksang.test", "--format", "xml"})
	require.ErrorContains(t, c.Execute(), "invalid format 'xml'")
}

func TestCheckCmd_Alias(t *testing.T) {
	t.Parallel()

	c, err := NewCheckCmd(newBaseCmd())
	require.NoError(t, err)
	require.Contains(t, c.Aliases, "single")
}
