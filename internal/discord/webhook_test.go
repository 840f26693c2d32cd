package discord_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/discord"

	"github.com/stretchr/testify/assert"
)

func TestExecute_SendsPayloadJSON(t *testing.T) {
	var received discord.WebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(1 << 20)
		assert.NoError(t, err)

		raw := r.FormValue("payload_json")
		assert.NotEmpty(t, raw)
		assert.NoError(t, json.Unmarshal([]byte(raw), &received))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := discord.NewClient()
	payload := discord.WebhookPayload{
		Username: "taskboard",
		Embeds: []discord.Embed{{
			Title: "Fix login redirect",
			Fields: []discord.EmbedField{
				{Name: "Status", Value: "in-progress", Inline: true},
			},
		}},
	}

	err := client.Execute(context.Background(), srv.URL, payload, nil)
	assert.NoError(t, err)
	assert.Equal(t, payload, received)
}

func TestExecute_WithAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(1 << 20)
		assert.NoError(t, err)

		file, header, err := r.FormFile("files[0]")
		assert.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "tasks.csv", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "id,title\n", string(data))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := discord.NewClient()
	attachment := &discord.Attachment{
		Filename:    "tasks.csv",
		ContentType: "text/csv",
		Data:        []byte("id,title\n"),
	}

	err := client.Execute(context.Background(), srv.URL, discord.WebhookPayload{Content: "export"}, attachment)
	assert.NoError(t, err)
}

func TestExecute_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	client := discord.NewClient()

	err := client.Execute(context.Background(), srv.URL, discord.WebhookPayload{Content: "hi"}, nil)
	assert.Error(t, err)

	var statusErr *discord.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
