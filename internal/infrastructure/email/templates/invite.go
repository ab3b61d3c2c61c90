package templates

import (
	"bytes"
	"html/template"
	"log"
)

// InviteEmailProps carries the variable parts of an editor invitation email.
type InviteEmailProps struct {
	Name            string
	InviteURL       string
	ProjectID       string
	ExpirationHours int
}

var inviteEmailTemplate = template.Must(template.New("inviteEmail").Parse(`
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">Hi {{.Name}},</p>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">You have been invited to edit the FlowBuild site <strong>{{.ProjectID}}</strong>.</p>
<table role="presentation" border="0" cellpadding="0" cellspacing="0" class="btn btn-primary" style="border-collapse: separate; box-sizing: border-box; width: 100%; min-width: 100%;" width="100%">
  <tbody>
    <tr>
      <td align="left" style="font-family: Helvetica, sans-serif; font-size: 16px; vertical-align: top; padding-bottom: 16px;" valign="top">
        <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: separate; width: auto;">
          <tbody>
            <tr>
              <td style="font-family: Helvetica, sans-serif; font-size: 16px; vertical-align: top; border-radius: 4px; text-align: center; background-color: #0867ec;" valign="top" align="center" bgcolor="#0867ec">
                <a href="{{.InviteURL}}" target="_blank" style="border: solid 2px #0867ec; border-radius: 4px; box-sizing: border-box; cursor: pointer; display: inline-block; font-size: 16px; font-weight: bold; margin: 0; padding: 12px 24px; text-decoration: none; background-color: #0867ec; border-color: #0867ec; color: #ffffff;">Accept invitation</a>
              </td>
            </tr>
          </tbody>
        </table>
      </td>
    </tr>
  </tbody>
</table>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">This link expires in {{.ExpirationHours}} hours. If you were not expecting this invitation you can ignore this email.</p>
`))

// GetInviteEmailContent renders the body of the editor invitation email.
func GetInviteEmailContent(props InviteEmailProps) string {
	if props.Name == "" {
		props.Name = "there"
	}
	if props.ExpirationHours <= 0 {
		props.ExpirationHours = 48
	}

	var buf bytes.Buffer
	if err := inviteEmailTemplate.Execute(&buf, props); err != nil {
		log.Printf("invite email template error: %v", err)
		return ""
	}
	return buf.String()
}
