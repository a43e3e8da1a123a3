package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, "service: web\nimage: nginx:1.27\nreplicas: 3\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Service != "web" || cfg.Image != "nginx:1.27" || cfg.Replicas != 3 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Interval != 0 {
		t.Fatalf("Interval = %v, want zero (daemon default)", cfg.Interval)
	}
}

func TestLoad_Durations(t *testing.T) {
	path := writeConfig(t, "service: web\nimage: nginx:1.27\nreplicas: 1\ninterval: 10s\nsettle-delay: 1s\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if time.Duration(cfg.Interval) != 10*time.Second {
		t.Errorf("Interval = %v, want 10s", time.Duration(cfg.Interval))
	}
	if time.Duration(cfg.SettleDelay) != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", time.Duration(cfg.SettleDelay))
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "missing service", contents: "image: nginx:1.27\nreplicas: 1\n"},
		{name: "missing image", contents: "service: web\nreplicas: 1\n"},
		{name: "negative replicas", contents: "service: web\nimage: nginx:1.27\nreplicas: -1\n"},
		{name: "bad duration", contents: "service: web\nimage: nginx:1.27\nreplicas: 1\ninterval: soon\n"},
		{name: "bad port", contents: "service: web\nimage: nginx:1.27\nreplicas: 1\nports: [\"eighty\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.contents)
			if _, err := Load(path); err == nil {
				t.Fatal("Load succeeded, want error")
			}
		})
	}
}

func TestPortMappings(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		want    PortMapping
		wantErr bool
	}{
		{name: "tcp default", port: "8080:80", want: PortMapping{HostPort: 8080, ContainerPort: 80, Protocol: "tcp"}},
		{name: "explicit udp", port: "53:53/udp", want: PortMapping{HostPort: 53, ContainerPort: 53, Protocol: "udp"}},
		{name: "no colon", port: "8080", wantErr: true},
		{name: "port out of range", port: "99999:80", wantErr: true},
		{name: "unknown protocol", port: "80:80/icmp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Service: "web", Image: "nginx:1.27", Ports: []string{tt.port}}
			got, err := cfg.PortMappings()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("PortMappings(%q) succeeded, want error", tt.port)
				}
				return
			}
			if err != nil {
				t.Fatalf("PortMappings(%q) failed: %v", tt.port, err)
			}
			if got[0] != tt.want {
				t.Fatalf("PortMappings(%q) = %+v, want %+v", tt.port, got[0], tt.want)
			}
		})
	}
}
