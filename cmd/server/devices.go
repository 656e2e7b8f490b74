package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhil2261/iot-backend/internal/provisioning"
	"github.com/Nikhil2261/iot-backend/internal/registry"
	"github.com/Nikhil2261/iot-backend/internal/syncengine"
	"github.com/Nikhil2261/iot-backend/pkg/httpx"
)

// Device-facing routes. Activation is the only unauthenticated mutating
// call; config pull and ping authenticate with the device credential and
// stamp liveness before touching any output state.
func registerDeviceRoutes(r chi.Router, prov *provisioning.Manager, reg *registry.Registry, engine *syncengine.Engine) {
	r.Post("/device-activate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DeviceID  string `json:"device_id"`
			ProvToken string `json:"prov_token"`
		}
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		credential, err := prov.Activate(r.Context(), req.DeviceID, req.ProvToken)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		// The credential appears in this response and nowhere else.
		httpx.WriteJSON(w, 200, map[string]any{"ok": true, "device_token": credential})
	})

	r.Get("/device-config", func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.URL.Query().Get("device_id")
		token := r.URL.Query().Get("token")
		if deviceID == "" || token == "" {
			httpx.WriteError(w, 400, "INVALID_REQUEST", "missing credentials", nil)
			return
		}
		owner, err := reg.Authenticate(r.Context(), deviceID, token)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		if err := reg.RecordLiveness(r.Context(), deviceID); err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		outputs, err := engine.Pull(r.Context(), owner)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		rec, err := reg.Device(r.Context(), deviceID)
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
		httpx.WriteJSON(w, 200, map[string]any{
			"ok":      true,
			"wifi":    map[string]any{"ssid": rec.WifiSSID, "password": rec.WifiPassword},
			"devices": devices,
		})
	})

	r.Post("/ping", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DeviceID string `json:"device_id"`
			Token    string `json:"token"`
			States   []struct {
				Pin    int     `json:"pin"`
				Status *string `json:"status"`
				Speed  *int    `json:"speed"`
				Type   *string `json:"type"`
				TS     int64   `json:"ts"`
			} `json:"states"`
		}
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		if req.DeviceID == "" || req.Token == "" {
			httpx.WriteError(w, 400, "INVALID_REQUEST", "missing credentials", nil)
			return
		}
		owner, err := reg.Authenticate(r.Context(), req.DeviceID, req.Token)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		if err := reg.RecordLiveness(r.Context(), req.DeviceID); err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		observations := make([]syncengine.Observation, 0, len(req.States))
		for _, s := range req.States {
			observations = append(observations, syncengine.Observation{
				Pin:         s.Pin,
				Status:      s.Status,
				Speed:       s.Speed,
				Kind:        s.Type,
				LogicalTime: s.TS,
			})
		}
		applied, err := engine.ApplyDeviceBatch(r.Context(), owner, observations)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"ok": true, "applied": applied})
	})
}
