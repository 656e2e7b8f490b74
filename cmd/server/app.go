package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhil2261/iot-backend/internal/provisioning"
	"github.com/Nikhil2261/iot-backend/internal/registry"
	"github.com/Nikhil2261/iot-backend/internal/syncengine"
	"github.com/Nikhil2261/iot-backend/pkg/httpx"
)

// Dashboard-facing routes. All of these sit behind sessionAuth; the
// account id comes from the request context, never from the body.
func registerAppRoutes(r chi.Router, prov *provisioning.Manager, reg *registry.Registry, engine *syncengine.Engine) {
	r.Post("/request-provision", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DeviceID string `json:"device_id"`
		}
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		token, expiry, err := prov.Request(r.Context(), accountFrom(r.Context()), req.DeviceID)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"ok": true, "prov_token": token, "expires": expiry})
	})

	r.Post("/update-status", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Pin    int     `json:"pin"`
			Status *string `json:"status"`
			Speed  *int    `json:"speed"`
			TS     int64   `json:"ts"`
		}
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		writeTime := req.TS
		if writeTime == 0 {
			writeTime = time.Now().UnixMilli()
		}
		rec, err := engine.ApplyAppWrite(r.Context(), accountFrom(r.Context()), syncengine.AppWrite{
			Pin:         req.Pin,
			Status:      req.Status,
			Speed:       req.Speed,
			WriteTimeMS: writeTime,
		})
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{
			"ok": true, "status": rec.Status, "speed": rec.Speed, "ts": rec.LogicalTime,
		})
	})

	r.Get("/my-devices", func(w http.ResponseWriter, r *http.Request) {
		// Dashboard listing keeps the stored kind untouched; the legacy
		// alias rewrite applies to the device pull path only.
		outputs, err := engine.List(r.Context(), accountFrom(r.Context()))
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		devices := make([]map[string]any, 0, len(outputs))
		for _, o := range outputs {
			devices = append(devices, map[string]any{
				"pin":    o.Pin,
				"type":   o.Kind,
				"status": o.Status,
				"speed":  o.Speed,
				"origin": o.Origin,
				"ts":     o.LogicalTime,
			})
		}
		httpx.WriteJSON(w, 200, map[string]any{"ok": true, "devices": devices})
	})

	r.Post("/update-wifi", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DeviceID string `json:"device_id"`
			SSID     string `json:"ssid"`
			Password string `json:"password"`
		}
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		err := reg.SetNetworkCredentials(r.Context(), req.DeviceID, accountFrom(r.Context()), req.SSID, req.Password)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"ok": true, "message": "Wi-Fi credentials updated"})
	})
}
