package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		unset       []string
		wantServer  string
		wantCreds   bool
		wantTimeout time.Duration
		wantErr     bool
	}{
		{
			name: "all vars set",
			env: map[string]string{
				"GMAIL_IMAP_SERVER": "imap.example.com:993",
				"GMAIL_USERNAME":    "user@gmail.com",
				"GMAIL_PASSWORD":    "app-password",
				"TOOL_TIMEOUT":      "30s",
			},
			wantServer:  "imap.example.com:993",
			wantCreds:   true,
			wantTimeout: 30 * time.Second,
		},
		{
			name: "server defaults to gmail",
			env: map[string]string{
				"GMAIL_USERNAME": "user@gmail.com",
				"GMAIL_PASSWORD": "app-password",
			},
			unset:       []string{"GMAIL_IMAP_SERVER", "TOOL_TIMEOUT"},
			wantServer:  DefaultIMAPServer,
			wantCreds:   true,
			wantTimeout: 60 * time.Second,
		},
		{
			name: "missing password is not a load error",
			env: map[string]string{
				"GMAIL_USERNAME": "user@gmail.com",
				"GMAIL_PASSWORD": "",
			},
			unset:       []string{"GMAIL_IMAP_SERVER", "TOOL_TIMEOUT"},
			wantServer:  DefaultIMAPServer,
			wantCreds:   false,
			wantTimeout: 60 * time.Second,
		},
		{
			name:    "invalid timeout",
			env:     map[string]string{"TOOL_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"TOOL_TIMEOUT": "-5s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			for _, k := range tt.unset {
				// t.Setenv registers the restore, Unsetenv then removes it for this test
				t.Setenv(k, "")
				os.Unsetenv(k)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if cfg != nil {
					t.Fatal("expected nil config on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Mailbox.Server != tt.wantServer {
				t.Errorf("Server = %q, want %q", cfg.Mailbox.Server, tt.wantServer)
			}
			if got := cfg.Mailbox.HasCredentials(); got != tt.wantCreds {
				t.Errorf("HasCredentials() = %v, want %v", got, tt.wantCreds)
			}
			if cfg.ToolTimeout != tt.wantTimeout {
				t.Errorf("ToolTimeout = %v, want %v", cfg.ToolTimeout, tt.wantTimeout)
			}
		})
	}
}

func TestMailboxHasCredentials(t *testing.T) {
	tests := []struct {
		name string
		mb   Mailbox
		want bool
	}{
		{name: "both set", mb: Mailbox{Username: "u", Password: "p"}, want: true},
		{name: "no username", mb: Mailbox{Password: "p"}, want: false},
		{name: "no password", mb: Mailbox{Username: "u"}, want: false},
		{name: "empty", mb: Mailbox{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mb.HasCredentials(); got != tt.want {
				t.Errorf("HasCredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}
