package tools

import (
	"strings"
	"testing"
)

func TestValidateMessageID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		errMsg  string
	}{
		{name: "hex id", id: "18c1f2a3b4c5d6e7"},
		{name: "prefixed id", id: "0x18c1f2a3b4c5d6e7"},
		{name: "trailing newline is ok", id: "18c1f2a3b4c5d6e7\n"},
		{name: "empty rejected", id: "", wantErr: true, errMsg: "required"},
		{name: "whitespace rejected", id: " \t", wantErr: true, errMsg: "required"},
		{name: "null byte rejected", id: "18c1\x00f2", wantErr: true, errMsg: "invalid characters"},
		{name: "delete rejected", id: "18c1\x7f", wantErr: true, errMsg: "invalid characters"},
		{name: "too long rejected", id: strings.Repeat("f", 65), wantErr: true, errMsg: "maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMessageID(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want containing %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateDownloadFolder(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "empty is ok", path: ""},
		{name: "relative path", path: "./attachments"},
		{name: "absolute path", path: "/home/user/downloads"},
		{name: "parent reference is ok", path: "../shared/attachments"},
		{name: "spaces are ok", path: "/home/user/My Attachments"},
		{name: "null byte rejected", path: "/home/user/\x00dir", wantErr: true, errMsg: "null"},
		{name: "newline rejected", path: "/home/user/a\nb", wantErr: true, errMsg: "control"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDownloadFolder(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.errMsg != "" && !strings.Contains(strings.ToLower(err.Error()), tt.errMsg) {
					t.Errorf("error = %q, want containing %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
