package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/propsheet/propsheet/pkg/editors"
	"github.com/propsheet/propsheet/pkg/groupstate/memory"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/services"
	"github.com/propsheet/propsheet/pkg/web"
)

var testSchema = json.RawMessage(`[
	{"property": "url", "title": "URL", "type": "string", "validation": {"required": true}},
	{"property": "timeout", "title": "Timeout", "type": "integer", "validation": {"integer": {"min": 1}}},
	{"property": "verbose", "title": "Verbose", "type": "checkbox", "group": "Advanced"},
	{"property": "proxy", "title": "Proxy", "type": "object", "properties": [
		{"property": "host", "title": "Host", "type": "string"},
		{"property": "port", "title": "Port", "type": "integer"}
	]}
]`)

type env struct {
	app *fiber.App
	svc *services.Sessions
}

func newEnv() *env {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := inspector.NewRegistry(logger)
	editors.Register(registry)

	svc := services.NewSessions(registry, memory.NewStore(), logger)
	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(svc, validate, registry)

	app := fiber.New()
	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Put("/:id/values/:property", handlers.SetValue)

	return &env{app: app, svc: svc}
}

func (e *env) create() string {
	session, err := e.svc.Create(context.Background(), services.CreateSessionRequest{
		Title:      "HTTP Request",
		InstanceID: "instance-1",
		ClassTag:   "http",
		Schema:     testSchema,
		Values:     map[string]any{"url": "https://example.com"},
	})
	if err != nil {
		panic(err)
	}

	return session.ID
}

func (e *env) httpPut(id, property string, value any) {
	body, _ := json.Marshal(map[string]any{"value": value})
	req := httptest.NewRequest("PUT", "/sessions/"+id+"/values/"+property, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req)
	if err != nil {
		panic(err)
	}

	if resp.StatusCode != 204 {
		b, _ := io.ReadAll(resp.Body)
		fmt.Printf("  !! PUT %s -> %d body=%s\n", property, resp.StatusCode, b)
	}
}

func (e *env) report(label, id string) {
	values, err := e.svc.Values(context.Background(), id)
	if err != nil {
		panic(err)
	}

	session, _ := e.svc.Get(context.Background(), id)
	fmt.Printf("%s: root timeout=%#v extraction=%#v\n", label,
		session.Surface().PropertyValue("timeout"), values)
}

func main() {
	// A: service sets timeout, HTTP sets proxy.host
	a := newEnv()
	idA := a.create()
	_ = a.svc.SetValue(context.Background(), idA, "timeout", float64(30))
	a.report("A after svc timeout", idA)
	a.httpPut(idA, "proxy.host", "proxy.internal")
	a.report("A after http proxy.host", idA)

	// B: HTTP sets timeout, service sets proxy.host
	b := newEnv()
	idB := b.create()
	b.httpPut(idB, "timeout", 30)
	b.report("B after http timeout", idB)
	_ = b.svc.SetValue(context.Background(), idB, "proxy.host", "proxy.internal")
	b.report("B after svc proxy.host", idB)

	// C: HTTP sets timeout only, then a second unrelated HTTP PUT on url
	c := newEnv()
	idC := c.create()
	c.httpPut(idC, "timeout", 30)
	c.report("C after http timeout", idC)
	c.httpPut(idC, "url", "https://example.org")
	c.report("C after http url", idC)
}
