package mailer

import (
	"strings"
	"testing"
)

func TestRenderProposal_IncludesClinicAndSite(t *testing.T) {
	body, err := renderProposal("Smile Dental", "https://smiledental.com")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(body, "Smile Dental") {
		t.Error("body should address the clinic by name")
	}
	if !strings.Contains(body, `href="https://smiledental.com"`) {
		t.Error("body should link the clinic's site")
	}
	if !strings.Contains(body, "smiledental.com</a>") {
		t.Error("link text should show the bare domain")
	}
}

func TestRenderProposal_SchemelessSiteGetsHTTPS(t *testing.T) {
	body, err := renderProposal("Clinic", "clinic.com")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, `href="https://clinic.com"`) {
		t.Error("schemeless site should be linked over https")
	}
}

func TestRenderProposal_DegradesWithoutSiteOrName(t *testing.T) {
	body, err := renderProposal("", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "your practice") {
		t.Error("missing name should fall back to a generic greeting")
	}
	if !strings.Contains(body, "your website") {
		t.Error("missing site should fall back to generic copy")
	}
	if !strings.Contains(body, `href="#"`) {
		t.Error("missing site must not produce a broken link")
	}
}

func TestRenderProposal_EscapesHostileInput(t *testing.T) {
	body, err := renderProposal(`<script>alert(1)</script>`, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("clinic name must be HTML-escaped")
	}
}
