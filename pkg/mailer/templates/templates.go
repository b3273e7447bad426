package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"

	"github.com/oksasatya/midnight-circuit/pkg/mailer"
)

//go:embed *.tmpl
var FS embed.FS

var (
	htmlTpl = htmpl.Must(htmpl.New("").ParseFS(FS, "notification.html.tmpl"))
	textTpl = texttpl.Must(texttpl.New("").ParseFS(FS, "notification.txt.tmpl"))
)

// Brand holds the company fields printed in every email.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	AppURL         string
	UnsubscribeURL string
}

type notificationData struct {
	Brand
	ActorName  string
	Text       string
	PreviewURL string
	Headline   string
	Time       string
}

// Subject returns the email subject for a notification kind.
func Subject(job mailer.NotificationJob) string {
	switch strings.ToLower(job.Kind) {
	case "like":
		return job.ActorName + " liked your content"
	case "comment":
		return job.ActorName + " commented on your content"
	case "follow":
		return job.ActorName + " started following you"
	default:
		return "New notification"
	}
}

// Render produces subject, text and HTML bodies for job.
func Render(job mailer.NotificationJob, brand Brand) (string, string, string, error) {
	data := notificationData{
		Brand:      brand,
		ActorName:  job.ActorName,
		Text:       job.Text,
		PreviewURL: job.PreviewURL,
		Headline:   Subject(job),
		Time:       job.CreatedAt.UTC().Format("02 January 2006, 15:04 MST"),
	}
	if job.CreatedAt.IsZero() {
		data.Time = time.Now().UTC().Format("02 January 2006, 15:04 MST")
	}

	var tb bytes.Buffer
	if err := textTpl.ExecuteTemplate(&tb, "notification.txt.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	var hb bytes.Buffer
	if err := htmlTpl.ExecuteTemplate(&hb, "notification.html.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	return data.Headline, tb.String(), hb.String(), nil
}
