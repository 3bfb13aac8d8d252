package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

const proposalSubject = "Quick audit: a few easy wins for your dental website"

// proposalTemplate is the outbound proposal body. Kept deliberately
// plain; deliverability matters more than design for a cold email.
var proposalTemplate = template.Must(template.New("proposal").Parse(`<html>
  <body style="font-family: Arial, Helvetica, sans-serif; font-size:15px; line-height:1.6; color:#111;">
    <div style="max-width:600px; margin:0 auto; padding:24px;">
      <p>Hi, {{.ClinicName}}!</p>

      <p>We took a quick look at <a href="{{.SiteLink}}" target="_blank">{{.SiteText}}</a>
      and noticed a few areas where it could be generating more patient bookings.</p>

      <p>From our experience working with dental clinics, this pattern appears often:</p>
      <ul style="padding-left: 20px;">
        <li><b>Slow loading</b>: visitors leave before booking.</li>
        <li><b>Confusing mobile layout</b>: missed calls and form submissions.</li>
        <li><b>Weak local SEO</b>: nearby competitors rank higher.</li>
      </ul>

      <p>If you would like, we can prepare a free, detailed audit of your website,
      tailored to your clinic: a short, actionable report (speed, SEO, UX) and a
      three-step improvement plan, delivered within 24 hours after your reply.</p>

      <p><b>Just reply to this email and we will handle the rest.</b></p>
    </div>
  </body>
</html>`))

type proposalData struct {
	ClinicName string
	SiteText   string
	SiteLink   string
}

// renderProposal builds the email body for one clinic. A missing website
// degrades the copy gracefully instead of producing a broken link.
func renderProposal(clinicName, clinicSite string) (string, error) {
	data := proposalData{
		ClinicName: strings.TrimSpace(clinicName),
		SiteText:   "your website",
		SiteLink:   "#",
	}
	if data.ClinicName == "" {
		data.ClinicName = "your practice"
	}

	site := strings.TrimSpace(clinicSite)
	if site != "" {
		data.SiteText = strings.TrimPrefix(strings.TrimPrefix(site, "https://"), "http://")
		if strings.HasPrefix(site, "http") {
			data.SiteLink = site
		} else {
			data.SiteLink = "https://" + site
		}
	}

	var buf bytes.Buffer
	if err := proposalTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
