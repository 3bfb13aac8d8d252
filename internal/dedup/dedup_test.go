package dedup

import (
	"testing"

	"outreach_backend/internal/board"
)

func TestContains_WebsiteVariantsCollide(t *testing.T) {
	idx := Build([]board.Task{
		{Name: "Smile Dental", Website: "clinicsite.com"},
	})

	variants := []string{
		"clinicsite.com",
		"https://clinicsite.com",
		"http://www.clinicsite.com",
		"https://www.clinicsite.com/",
		"WWW.CLINICSITE.COM",
	}
	for _, v := range variants {
		lead := board.Lead{Name: "Other Name", Website: v}
		if !idx.Contains(lead) {
			t.Errorf("website variant %q should match existing clinicsite.com", v)
		}
	}
}

func TestContains_SameNameDifferentWebsiteDoesNotMerge(t *testing.T) {
	idx := Build([]board.Task{
		{Name: "Bright Smiles", City: "Austin", Website: "brightsmiles-austin.com"},
	})

	lead := board.Lead{Name: "Bright Smiles", City: "Austin", Website: "brightsmiles-dallas.com"}
	if idx.Contains(lead) {
		t.Fatal("leads with different websites must not merge on name alone")
	}
}

func TestContains_PhoneFormatsCollide(t *testing.T) {
	idx := Build([]board.Task{
		{Name: "Pearl Dental", Phone: "(212) 555-0134"},
	})

	lead := board.Lead{Name: "Different Name", Phone: "+1 212 555 0134"}
	if !idx.Contains(lead) {
		t.Fatal("phone format variants should match the same number")
	}
}

func TestContains_NameSignatureOnlyWhenNoStrongKeys(t *testing.T) {
	idx := Build([]board.Task{
		{Name: "Gentle Care", City: "Miami"},
	})

	bare := board.Lead{Name: "Gentle Care", City: "Miami"}
	if !idx.Contains(bare) {
		t.Fatal("lead with no website or phone should match on name signature")
	}

	withSite := board.Lead{Name: "Gentle Care", City: "Miami", Website: "gentlecare-miami.com"}
	if idx.Contains(withSite) {
		t.Fatal("lead carrying a new website must be identified by the website, not the name")
	}
}

func TestRegister_PreventsIntraRunDuplicates(t *testing.T) {
	idx := Build(nil)

	lead := board.Lead{Name: "New Clinic", Website: "newclinic.com"}
	if idx.Contains(lead) {
		t.Fatal("empty index should not contain anything")
	}

	idx.Register(lead)
	dup := board.Lead{Name: "New Clinic LLC", Website: "https://www.newclinic.com/"}
	if !idx.Contains(dup) {
		t.Fatal("registered lead should dedup later candidates in the same run")
	}
}

func TestNormalizeWebsite(t *testing.T) {
	cases := map[string]string{
		"":                             "",
		"Example.com":                  "example.com",
		"https://www.example.com/":     "example.com",
		"http://example.com":           "example.com",
		"www.example.com/path/":        "example.com/path",
		"  https://Example.COM/Page ":  "example.com/page",
	}
	for in, want := range cases {
		if got := NormalizeWebsite(in); got != want {
			t.Errorf("NormalizeWebsite(%q) = %q, want %q", in, got, want)
		}
	}
}
