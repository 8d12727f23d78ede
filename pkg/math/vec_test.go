package math

import "testing"

func TestVec3_HorizontalLength(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float32
	}{
		{"zero", Vec3{}, 0},
		{"x only", Vec3{X: 3}, 3},
		{"xy plane", Vec3{X: 3, Y: 4}, 5},
		{"z ignored", Vec3{X: 3, Y: 4, Z: 100}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.HorizontalLength(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3_Mid(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{0, 0, 0.0005}
	got := a.Mid(b)
	want := Vec3{0, 0, 0.00025}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestVec3_AngleTo(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float32
	}{
		{"parallel", Vec3{Z: 1}, Vec3{Z: 1}, 0},
		{"orthogonal", Vec3{X: 1}, Vec3{Y: 1}, 1.5707964},
		{"opposite", Vec3{X: 1}, Vec3{X: -1}, 3.1415927},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.AngleTo(tt.b)
			if diff := got - tt.want; diff > 1e-5 || diff < -1e-5 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3_IsZero(t *testing.T) {
	if !(Vec3{}).IsZero() {
		t.Error("zero vector not reported as zero")
	}
	if (Vec3{Z: 1e-10}).IsZero() {
		t.Error("near-zero vector reported as exactly zero")
	}
}
