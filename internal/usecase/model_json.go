package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pennywise/backend/internal/domain"
)

// stripCodeFence removes markdown code fences that models like to wrap JSON in
func stripCodeFence(resp string) string {
	resp = strings.TrimSpace(resp)
	if strings.HasPrefix(resp, "```") {
		resp = strings.TrimPrefix(resp, "```")
		// drop the info string, e.g. ```json
		if nl := strings.IndexByte(resp, '\n'); nl >= 0 && !strings.ContainsAny(resp[:nl], "{[") {
			resp = resp[nl+1:]
		} else {
			resp = strings.TrimPrefix(resp, "json")
		}
	}
	resp = strings.TrimSuffix(strings.TrimSpace(resp), "```")
	return strings.TrimSpace(resp)
}

// decodeModelJSON strips fences and unmarshals a model response into v
func decodeModelJSON(resp string, v interface{}) error {
	cleaned := stripCodeFence(resp)
	if cleaned == "" {
		return fmt.Errorf("%w: empty response", domain.ErrUnparsableResponse)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnparsableResponse, err)
	}
	return nil
}
