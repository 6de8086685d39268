package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/tidwall/gjson"
)

const (
	uploadOp = "upload"
	// statusSuccess is the gateway's marker for an accepted mailing.
	statusSuccess = "sucesso"
)

// referencePaths lists where the gateway may put the list/campaign id, most specific first.
var referencePaths = []string{
	"resposta_discador.id_lista",
	"id_lista",
	"resposta_discador.id",
	"id",
	"campaign_id",
}

// UploadPayload is the JSON body of POST /api/upload/{region}.
// The misspelled mailling_name key is what the gateway expects.
type UploadPayload struct {
	FileContentBase64 string `json:"file_content_base64"`
	MailingName       string `json:"mailling_name"`
	LoginCRM          string `json:"login_crm"`
}

// UploadMailing delivers an encoded mailing list for region. The gateway's
// untyped reply is converted here, so callers only ever see mailing.Success or
// a *mailing.Error of kind Validation, Transport or Domain. Nothing is retried.
func (c *Client) UploadMailing(ctx context.Context, region mailing.Region, payload, filename string) (mailing.Success, error) {
	if !region.Valid() {
		return mailing.Success{}, mailing.ValidationError(uploadOp, fmt.Sprintf("unknown region %q", region))
	}
	if payload == "" {
		return mailing.Success{}, mailing.ValidationError(uploadOp, "encoded file content is empty")
	}
	if strings.TrimSpace(filename) == "" {
		return mailing.Success{}, mailing.ValidationError(uploadOp, "file name is empty")
	}

	c.logger.Info("Submitting mailing", "region", region, "file", filename, "payload_bytes", len(payload))
	resp, err := c.do(ctx, http.MethodPost, "/api/upload/"+string(region), UploadPayload{
		FileContentBase64: payload,
		MailingName:       filename,
		LoginCRM:          c.clientTag,
	})
	if err != nil {
		c.logger.Error("Upload request failed", "region", region, "error", err)
		return mailing.Success{}, mailing.TransportError(uploadOp, "", err)
	}
	c.logger.Info("Upload response received", "region", region, "status", resp.StatusCode)

	if !resp.ok() {
		msg := detailMessage(resp.Body)
		if msg == "" {
			msg = httpStatusMessage(resp)
		}
		return mailing.Success{}, mailing.TransportError(uploadOp, msg, nil)
	}

	return parseUploadResult(resp.Body)
}

// parseUploadResult validates a 2xx body and maps it onto the closed result type.
func parseUploadResult(body []byte) (mailing.Success, error) {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return mailing.Success{}, mailing.DomainError(uploadOp, "invalid response body")
	}
	doc := gjson.ParseBytes(body)

	message := firstString(doc, "mensagem", "message")
	if status := doc.Get("status").String(); status != statusSuccess {
		if message == "" {
			message = firstString(doc, "detail")
		}
		if message == "" && status != "" {
			message = fmt.Sprintf("upload not accepted (status %q)", status)
		}
		return mailing.Success{}, mailing.DomainError(uploadOp, message)
	}

	return mailing.Success{
		Reference: firstString(doc, referencePaths...),
		Message:   message,
	}, nil
}

// detailMessage extracts the error detail of a non-2xx body, if any.
func detailMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists():
		return firstString(gjson.ParseBytes(body), "mensagem", "message")
	case detail.Type == gjson.String:
		return detail.String()
	default:
		return detail.Raw
	}
}

func httpStatusMessage(resp response) string {
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = resp.Status
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text)
}

// firstString returns the first non-empty scalar found at paths, numbers rendered as text.
func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := doc.Get(p)
		switch v.Type {
		case gjson.String, gjson.Number:
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}
