package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"offload/internal/devices"
	"offload/internal/headextract"
	"offload/internal/irtext"
	"offload/internal/pipeline"
)

const sampleModule = `module devices ["/job:worker/replica:0/task:0/device:TPU:0", "/job:worker/replica:0/task:0/device:CPU:0"] {
  "func.func"() ({
    ^(%a: tensor<i32>):
    %r = "device.cluster"() ({
      %b = "tf.F"(%a) [offload] : (tensor<i32>)
      %d = "tf.H"(%b) : (tensor<i32>)
      "device.return"(%d) : ()
    }) : (tensor<i32>)
    "func.return"(%r) : ()
  }) [sym_name = "main"] : ()
}
`

// execute runs the root command with args. Each test drives a different
// subcommand, since cobra keeps flag values between executions.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	writeFile(t, path, "")
	return path
}

func TestOptCommandExtractsHead(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "main.ir")
	writeFile(t, input, sampleModule)

	stdout, stderr, err := execute(t, "opt", "--color", "off", "--config", emptyConfig(t), input)
	if err != nil {
		t.Fatalf("opt: %v\nstderr:\n%s", err, stderr)
	}
	m, err := irtext.ParseString(stdout)
	if err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, stdout)
	}
	if launches := len(m.Collect("device.launch")); launches != 1 {
		t.Errorf("got %d launches, want 1:\n%s", launches, stdout)
	}
	if !strings.Contains(stderr, headextract.Name+": 1 of 1 clusters extracted") {
		t.Errorf("missing pass summary in stderr:\n%s", stderr)
	}
}

func TestVerifyCommandReportsErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ir")
	bad := filepath.Join(dir, "bad.ir")
	writeFile(t, good, sampleModule)
	writeFile(t, bad, "module {\n  %0 = \"x\"(%undefined) : (i32)\n}\n")

	stdout, stderr, err := execute(t, "verify", "--color", "off", "--format", "short", "--config", emptyConfig(t), dir)
	var failed *failedFilesError
	if !errors.As(err, &failed) {
		t.Fatalf("expected failedFilesError, got %v", err)
	}
	if failed.failed != 1 || failed.total != 2 {
		t.Errorf("failed = %d of %d, want 1 of 2", failed.failed, failed.total)
	}
	if !strings.Contains(stdout, good+": ok") {
		t.Errorf("stdout does not list %s as ok:\n%s", good, stdout)
	}
	if strings.Contains(stdout, bad) {
		t.Errorf("stdout lists failing file:\n%s", stdout)
	}
	if !strings.Contains(stderr, "bad.ir") {
		t.Errorf("stderr has no diagnostic for bad.ir:\n%s", stderr)
	}
}

func TestPassesCommandJSON(t *testing.T) {
	stdout, _, err := execute(t, "passes", "--format", "json")
	if err != nil {
		t.Fatalf("passes: %v", err)
	}
	var got []passPayload
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	names := make(map[string]string, len(got))
	for _, p := range got {
		names[p.Name] = p.Description
	}
	if names[headextract.Name] != headextract.Description {
		t.Errorf("head extraction pass missing or wrong: %+v", got)
	}
	if _, ok := names["verify"]; !ok {
		t.Errorf("verify pass missing: %+v", got)
	}
}

func TestDevicesCommandFiltersByType(t *testing.T) {
	input := filepath.Join(t.TempDir(), "main.ir")
	writeFile(t, input, sampleModule)

	stdout, _, err := execute(t, "devices", "--color", "off", "--type", "tpu", input)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	want := "TPU (1)\n  /job:worker/replica:0/task:0/device:TPU:0\n"
	if stdout != want {
		t.Errorf("devices output:\n%s\nwant:\n%s", stdout, want)
	}
}

func TestRenderDevicesGroupsByType(t *testing.T) {
	devs := devices.RuntimeDevices{}
	for _, name := range []string{
		"/job:w/replica:0/task:0/device:TPU:1",
		"/job:w/replica:0/task:0/device:CPU:0",
		"/job:w/replica:0/task:0/device:TPU:0",
	} {
		props, err := devices.ParseName(name)
		if err != nil {
			t.Fatalf("ParseName(%q): %v", name, err)
		}
		devs[name] = props
	}
	var buf bytes.Buffer
	renderDevices(&buf, devs, devs.Names(), false)
	want := "CPU (1)\n  /job:w/replica:0/task:0/device:CPU:0\n" +
		"TPU (2)\n  /job:w/replica:0/task:0/device:TPU:0\n  /job:w/replica:0/task:0/device:TPU:1\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	renderDevices(&buf, devs, nil, false)
	if buf.String() != "no devices\n" {
		t.Errorf("empty list rendered as %q", buf.String())
	}
}

func TestWriteOutputsToDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	res := pipeline.Result{Files: []pipeline.FileResult{
		{Path: "in/a.ir", Output: []byte("module {\n}\n")},
		{Path: "in/b.irpack", Output: []byte("module {\n}\n")},
		{Path: "in/c.ir", Err: errors.New("boom")},
	}}
	if err := writeOutputs(nil, res, out, pipeline.EmitText); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if strings.Join(names, ",") != "a.ir,b.ir" {
		t.Errorf("written files = %v, want [a.ir b.ir]", names)
	}
}

func TestWriteOutputsToStdout(t *testing.T) {
	var buf bytes.Buffer
	res := pipeline.Result{Files: []pipeline.FileResult{
		{Path: "a.ir", Output: []byte("A\n")},
		{Path: "b.ir", Output: []byte("B\n")},
	}}
	if err := writeOutputs(&buf, res, "", pipeline.EmitText); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	want := "// a.ir\nA\n// b.ir\nB\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("readUIMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("readUIMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDiagFormat(t *testing.T) {
	for _, in := range []string{"pretty", "Short", "json"} {
		if _, err := parseDiagFormat(in); err != nil {
			t.Errorf("parseDiagFormat(%q): %v", in, err)
		}
	}
	_, err := parseDiagFormat("sarif")
	var fe *flagValueError
	if !errors.As(err, &fe) {
		t.Fatalf("expected flagValueError, got %v", err)
	}
	if !strings.Contains(fe.Error(), "pretty|short|json") {
		t.Errorf("error %q does not list choices", fe)
	}
}
