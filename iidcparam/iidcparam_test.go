package iidcparam

import "testing"

func TestParseRecognizedName(t *testing.T) {
	p, ok := Parse("GetFramerate")
	if !ok || p.Name != GetFramerate {
		t.Errorf("Parse(GetFramerate) = (%+v, %v), want (Name: GetFramerate, true)", p, ok)
	}
}

func TestParseUnrecognizedName(t *testing.T) {
	p, ok := Parse("NotARealParameter")
	if ok {
		t.Errorf("Parse(NotARealParameter) = (%+v, true), want ok=false", p)
	}
}

func TestParseValueSuffix(t *testing.T) {
	p, ok := Parse("SetNewMoviename=/tmp/out.mov")
	if !ok || p.Name != SetNewMoviename || p.StrValue != "/tmp/out.mov" {
		t.Errorf("Parse(SetNewMoviename=...) = %+v, ok=%v", p, ok)
	}
}

func TestParseAutoPrefixOnFeature(t *testing.T) {
	p, ok := Parse("AutoGain")
	if !ok || p.Name != Gain || !p.Auto {
		t.Errorf("Parse(AutoGain) = %+v, ok=%v, want Name=Gain, Auto=true", p, ok)
	}
}

// TestParseAutoPrefixRestrictedToFeatures covers the edge case where a
// non-feature name happens to start with "Auto": the prefix must not be
// stripped for names outside featureNames.
func TestParseAutoPrefixRestrictedToFeatures(t *testing.T) {
	p, ok := Parse("AutoSyncMode")
	if ok {
		t.Errorf("Parse(AutoSyncMode) = (%+v, true), want ok=false (SyncMode is not a feature)", p)
	}
}

func TestIsFeature(t *testing.T) {
	for _, n := range []Name{Brightness, Gain, Exposure, Shutter, Sharpness, Saturation, Gamma} {
		if !n.IsFeature() {
			t.Errorf("%v.IsFeature() = false, want true", n)
		}
	}
	for _, n := range []Name{GetFramerate, SyncMode, PrintParameters} {
		if n.IsFeature() {
			t.Errorf("%v.IsFeature() = true, want false", n)
		}
	}
}

func TestNameStringRoundTrips(t *testing.T) {
	for s, n := range byString {
		if n.String() != s {
			t.Errorf("Name(%d).String() = %q, want %q", n, n.String(), s)
		}
	}
}
