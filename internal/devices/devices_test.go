package devices_test

import (
	"errors"
	"slices"
	"testing"

	"offload/internal/devices"
	"offload/internal/ir"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		want    devices.DeviceProperties
		wantErr bool
	}{
		{name: "/job:worker/replica:0/task:1/device:TPU:3", want: devices.DeviceProperties{Job: "worker", Replica: 0, Task: 1, Type: "TPU", ID: 3}},
		{name: "/job:localhost/replica:2/task:0/device:CPU:0", want: devices.DeviceProperties{Job: "localhost", Replica: 2, Task: 0, Type: "CPU", ID: 0}},
		{name: "job:worker/replica:0/task:0/device:TPU:0", wantErr: true},
		{name: "/job:worker/replica:0/task:0", wantErr: true},
		{name: "/job:worker/replica:x/task:0/device:TPU:0", wantErr: true},
		{name: "/job:worker/replica:0/task:0/device:TPU", wantErr: true},
		{name: "/job:worker/replica:0/task:0/gpu:0", wantErr: true},
		{name: "/job:/replica:0/task:0/device:TPU:0", wantErr: true},
		{name: "/job:a/job:b/replica:0/task:0/device:TPU:0", wantErr: true},
		{name: "/job:worker/replica:0/replica:1/task:0/device:TPU:0", wantErr: true},
		{name: "/job:worker/replica:0/task:0/device:TPU:0/device:CPU:0", wantErr: true},
		{name: "/job:worker/replica:-1/task:0/device:TPU:0", wantErr: true},
		{name: "/job:worker/replica:0/task:-2/device:TPU:0", wantErr: true},
		{name: "/job:worker/replica:0/task:0/device:TPU:-1", wantErr: true},
		{name: "/job:worker/replica:+1/task:0/device:TPU:0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := devices.ParseName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseName: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.name {
				t.Errorf("String() = %q, want %q", got.String(), tt.name)
			}
		})
	}
}

func TestParseModule(t *testing.T) {
	m := ir.NewModule()
	if _, err := devices.Parse(m); !errors.Is(err, devices.ErrNoDevices) {
		t.Fatalf("expected ErrNoDevices, got %v", err)
	}

	m.SetDevices([]string{
		"/job:worker/replica:0/task:0/device:TPU:1",
		"/job:worker/replica:0/task:0/device:CPU:0",
		"/job:worker/replica:0/task:0/device:TPU:0",
	})
	devs, err := devices.FromModule.Devices(m)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devs) != 3 {
		t.Fatalf("got %d devices", len(devs))
	}
	wantTPU := []string{"/job:worker/replica:0/task:0/device:TPU:0", "/job:worker/replica:0/task:0/device:TPU:1"}
	if got := devs.ByType("tpu"); !slices.Equal(got, wantTPU) {
		t.Errorf("ByType(tpu) = %v", got)
	}
	if got := devs.Names(); got[0] != "/job:worker/replica:0/task:0/device:CPU:0" {
		t.Errorf("Names() not sorted: %v", got)
	}

	m.SetDevices([]string{"/bad"})
	if _, err := devices.Parse(m); err == nil {
		t.Error("expected error for malformed device")
	}
}

func TestEmptyDeviceListIsNotAnError(t *testing.T) {
	m := ir.NewModule()
	m.SetDevices(nil)
	devs, err := devices.Parse(m)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(devs) != 0 {
		t.Errorf("expected no devices, got %v", devs)
	}
}
