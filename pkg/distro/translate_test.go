package distro

import "testing"

func TestTranslate_KaliBecomesDebian(t *testing.T) {
	kali := Identity{
		Kernel:  "linux",
		Name:    "Kali GNU/Linux",
		ID:      "kali",
		Version: Version{Major: "1"},
	}

	got := Translate(kali)

	if got.ID != "debian" || got.Name != "Debian" {
		t.Fatalf("Expected debian, got %q/%q", got.Name, got.ID)
	}
	if got.Version.Major != "7" || got.Version.Minor != "0" {
		t.Errorf("Expected version 7.0, got %q", got.Version.String())
	}
	if got.Codename != "wheezy" {
		t.Errorf("Expected codename wheezy, got %q", got.Codename)
	}
	if kali.ID != "kali" {
		t.Error("Expected the input identity to be left unchanged")
	}
}

func TestTranslate_UbuntuDerivatives(t *testing.T) {
	tests := []struct {
		id      string
		major   string
		want    string
		wantVer string
	}{
		{"linuxmint", "21", "ubuntu", "22.04"},
		{"pop", "22", "ubuntu", "22.04"},
		{"neon", "20", "ubuntu", "20.04"},
		{"trisquel", "7", "ubuntu", "14.04"},
		{"elementary_os", "02", "ubuntu", "12.04"},
	}

	for _, tt := range tests {
		in := Identity{ID: tt.id, Name: tt.id, Version: Version{Major: tt.major}}
		got := Translate(in)
		if got.ID != tt.want {
			t.Errorf("%s %s: expected %s, got %s", tt.id, tt.major, tt.want, got.ID)
		}
		if got.Version.String() != tt.wantVer {
			t.Errorf("%s %s: expected version %s, got %s", tt.id, tt.major, tt.wantVer, got.Version.String())
		}
	}
}

func TestTranslate_MintEditionsStayApart(t *testing.T) {
	// The Debian edition of Mint shares the id but not the major
	// version range with the Ubuntu edition.
	lmde := Translate(Identity{ID: "linuxmint", Version: Version{Major: "5"}})
	if lmde.ID != "debian" || lmde.Version.String() != "11.0" {
		t.Errorf("Expected debian 11.0 for LMDE 5, got %s %s", lmde.ID, lmde.Version.String())
	}

	mint := Translate(Identity{ID: "linuxmint", Version: Version{Major: "20"}})
	if mint.ID != "ubuntu" || mint.Version.String() != "20.04" {
		t.Errorf("Expected ubuntu 20.04 for Mint 20, got %s %s", mint.ID, mint.Version.String())
	}
}

func TestTranslate_Idempotent(t *testing.T) {
	inputs := []Identity{
		{ID: "kali", Version: Version{Major: "1"}},
		{ID: "linuxmint", Version: Version{Major: "21"}},
		{ID: "devuan", Version: Version{Major: "4"}},
		{ID: "ubuntu", Version: Version{Major: "20", Minor: "04"}},
		{ID: "centos", Version: Version{Major: "7"}},
		{ID: "arch"},
	}

	for _, in := range inputs {
		once := Translate(in)
		twice := Translate(once)
		if once != twice {
			t.Errorf("Translation of %s is not idempotent: first %+v, second %+v", in.ID, once, twice)
		}
	}
}

func TestTranslate_UnknownDerivativeUntouched(t *testing.T) {
	in := Identity{ID: "kali", Name: "Kali GNU/Linux", Version: Version{Major: "9999"}}
	got := Translate(in)
	if got != in {
		t.Errorf("Expected unknown table key to leave identity unchanged, got %+v", got)
	}
}
