package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"offload/internal/version"
)

func TestCollectVersionInfoTrimsAndDefaults(t *testing.T) {
	orig := []string{version.Version, version.GitCommit, version.GitMessage, version.BuildDate}
	defer func() {
		version.Version, version.GitCommit, version.GitMessage, version.BuildDate = orig[0], orig[1], orig[2], orig[3]
	}()

	version.Version = "  "
	version.GitCommit = " abc123\n"
	version.GitMessage = ""
	version.BuildDate = "2026-01-15T10:30:00Z "

	info := collectVersionInfo()
	want := versionInfo{Version: "dev", GitCommit: "abc123", BuildDate: "2026-01-15T10:30:00Z"}
	if info != want {
		t.Errorf("collectVersionInfo() = %+v, want %+v", info, want)
	}
}

func TestRenderVersionPretty(t *testing.T) {
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123"}
	tests := []struct {
		name string
		opts versionOptions
		want []string
		not  []string
	}{
		{
			name: "plain",
			want: []string{"offload 1.2.3\n", "passes: "},
			not:  []string{"commit:", "message:", "built:"},
		},
		{
			name: "full",
			opts: versionOptions{showHash: true, showMessage: true, showDate: true},
			want: []string{"commit: abc123\n", "message: unknown\n", "built:  unknown\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderVersionPretty(&buf, info, tt.opts)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(out, n) {
					t.Errorf("output should not contain %q:\n%s", n, out)
				}
			}
		})
	}
}

func TestRenderVersionJSON(t *testing.T) {
	info := versionInfo{Version: "1.2.3", BuildDate: "2026-01-15"}

	var buf bytes.Buffer
	if err := renderVersionJSON(&buf, info, versionOptions{showDate: true}); err != nil {
		t.Fatal(err)
	}
	var got versionPayload
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.Tool != "offload" || got.Version != "1.2.3" || got.BuildDate != "2026-01-15" {
		t.Errorf("payload = %+v", got)
	}
	if got.GitCommit != "" || got.GitMessage != "" {
		t.Errorf("unrequested fields set: %+v", got)
	}
	if len(got.Passes) == 0 {
		t.Error("payload lists no passes")
	}
}
