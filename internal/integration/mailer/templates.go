package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// The HTML here mirrors the agency's transactional mail layout: red banner,
// white cards on a grey body, dark footer.

type ApplicationEmail struct {
	ApplicationID string
	FullName      string
	Email         string
	Phone         string
	Category      string
	Subcategory   string
	Institution   string
	Course        string
	YearOfStudy   string
	Availability  string
	Duration      string
	CoverLetter   string
}

func NewApplicationHTML(a ApplicationEmail, submittedAt time.Time) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<div style="background: #DC2626; padding: 30px; text-align: center;"><h1 style="color: white; margin: 0;">New Attachment Application</h1></div>`)
	b.WriteString(`<div style="padding: 30px; background-color: #f9fafb;">`)
	b.WriteString(`<h2 style="color: #1f2937; margin-bottom: 20px;">Applicant Details</h2>`)
	b.WriteString(`<div style="background: white; padding: 20px; border-radius: 10px; margin-bottom: 20px;">`)
	writeRow(&b, "Full Name", a.FullName)
	writeRow(&b, "Email", a.Email)
	writeRow(&b, "Phone", a.Phone)
	b.WriteString(`</div>`)
	b.WriteString(`<div style="background: white; padding: 20px; border-radius: 10px; margin-bottom: 20px;">`)
	b.WriteString(`<h3 style="color: #DC2626; margin-top: 0;">Application Details</h3>`)
	writeRow(&b, "Category", a.Category)
	if a.Subcategory != "" {
		writeRow(&b, "Subcategory", a.Subcategory)
	}
	writeRow(&b, "Institution", a.Institution)
	writeRow(&b, "Course", a.Course)
	writeRow(&b, "Year of Study", a.YearOfStudy)
	writeRow(&b, "Available From", a.Availability)
	writeRow(&b, "Duration", a.Duration)
	b.WriteString(`</div>`)
	b.WriteString(`<div style="background: white; padding: 20px; border-radius: 10px;">`)
	b.WriteString(`<h3 style="color: #DC2626; margin-top: 0;">Cover Letter</h3>`)
	fmt.Fprintf(&b, `<p style="line-height: 1.6; color: #4b5563;">%s</p>`, html.EscapeString(a.CoverLetter))
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div style="margin-top: 30px; padding: 20px; background: #fef3c7; border-left: 4px solid #f59e0b; border-radius: 5px;"><p style="margin: 0; color: #92400e;"><strong>Application ID:</strong> %s<br><strong>Submitted:</strong> %s</p></div>`,
		html.EscapeString(a.ApplicationID), submittedAt.Format("02 Jan 2006 15:04 MST"))
	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding: 20px; text-align: center; background-color: #1f2937; color: white;"><p style="margin: 0; font-size: 14px;">Newsline Training Agency</p><p style="margin: 5px 0; font-size: 12px;">This is an automated message. Please do not reply.</p></div>`)
	b.WriteString(`</div>`)
	return b.String()
}

func StudentMessageHTML(subject, body string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<div style="background: #DC2626; padding: 30px; text-align: center;"><h1 style="color: white; margin: 0;">Message from Newsline Training Agency</h1></div>`)
	b.WriteString(`<div style="padding: 30px; background-color: #f9fafb;">`)
	fmt.Fprintf(&b, `<div style="background: white; padding: 25px; border-radius: 10px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);"><h2 style="color: #1f2937; margin-top: 0; margin-bottom: 20px;">%s</h2><div style="line-height: 1.8; color: #4b5563; white-space: pre-wrap;">%s</div></div>`,
		html.EscapeString(subject), html.EscapeString(body))
	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding: 20px; text-align: center; background-color: #1f2937; color: white;"><p style="margin: 0; font-size: 14px; font-weight: bold;">Newsline Training Agency</p><p style="margin: 5px 0 0 0; font-size: 12px; color: #9ca3af;">This message was sent by an administrator. Please contact us if you have any questions.</p></div>`)
	b.WriteString(`</div>`)
	return b.String()
}

func PasswordResetHTML(resetURL string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<div style="background: #DC2626; padding: 30px; text-align: center;"><h1 style="color: white; margin: 0;">Password Reset</h1></div>`)
	fmt.Fprintf(&b, `<div style="padding: 30px; background-color: #f9fafb;"><div style="background: white; padding: 25px; border-radius: 10px;"><p style="line-height: 1.8; color: #4b5563;">A password reset was requested for your account. The link below is valid for one hour. If you did not request this, you can ignore this email.</p><p><a href="%s" style="color: #DC2626;">Reset your password</a></p></div></div>`, html.EscapeString(resetURL))
	b.WriteString(`<div style="padding: 20px; text-align: center; background-color: #1f2937; color: white;"><p style="margin: 0; font-size: 14px;">Newsline Training Agency</p></div>`)
	b.WriteString(`</div>`)
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `<p style="margin: 10px 0;"><strong>%s:</strong> %s</p>`, label, html.EscapeString(value))
}
