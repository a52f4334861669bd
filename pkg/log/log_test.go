package log_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vivant/robin/pkg/log"
)

func TestSet(t *testing.T) {
	t.Parallel()
	data := []struct {
		name    string
		level   string
		exp     logrus.Level
		isErr   bool
		noColor bool
	}{
		{name: "empty keeps default", level: "", exp: logrus.InfoLevel},
		{name: "debug", level: "debug", exp: logrus.DebugLevel},
		{name: "warn without color", level: "warn", exp: logrus.WarnLevel, noColor: true},
		{name: "invalid", level: "loud", exp: logrus.InfoLevel, isErr: true},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			logE := log.New("v0.1.0")
			err := log.Set(logE, d.level, d.noColor)
			if d.isErr {
				if err == nil {
					t.Fatal("error must be returned")
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := logE.Logger.GetLevel(); got != d.exp {
				t.Errorf("wanted %v, got %v", d.exp, got)
			}
			if d.noColor {
				f, ok := logE.Logger.Formatter.(*logrus.TextFormatter)
				if !ok || !f.DisableColors {
					t.Errorf("colors must be disabled: %#v", logE.Logger.Formatter)
				}
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	logE := log.New("v1.2.3")
	if v := logE.Data["program_version"]; v != "v1.2.3" {
		t.Errorf("program_version field: wanted %q, got %v", "v1.2.3", v)
	}
	if p := logE.Data["program"]; p != "robin" {
		t.Errorf("program field: wanted %q, got %v", "robin", p)
	}
}
