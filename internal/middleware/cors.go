package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allowedOrigin 為 "*"（或空白）時允許任何來源，否則為逗號分隔的來源清單
func CORS(allowedOrigin string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", LegacyTokenHeader},
		MaxAge:       12 * time.Hour,
	}

	origins := ParseOrigins(allowedOrigin)
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// ParseOrigins 回傳明確列出的來源；含 "*" 或沒有任何來源時回傳 nil
func ParseOrigins(allowedOrigin string) []string {
	var origins []string
	for _, o := range strings.Split(allowedOrigin, ",") {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			return nil
		default:
			origins = append(origins, o)
		}
	}
	return origins
}
