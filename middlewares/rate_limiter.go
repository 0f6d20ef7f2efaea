package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/teampayal/cafe-pos/utils"
)

// RateLimiter -> fixed window counter per key (IP atau token). Dipakai di
// boundary public supaya percobaan tebak token / spam order terbatas per
// window. Counter boleh sedikit overcount saat race, yang penting tidak
// undercount: increment-and-compare selalu di bawah satu mutex.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, windowSecs int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  time.Duration(windowSecs) * time.Second,
		windows: make(map[string]*window),
	}
}

// allow -> naikkan counter untuk key; false plus sisa window kalau sudah
// melewati limit. Window lama di-reset, bukan di-ban permanen.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.windows[key] = &window{start: now, count: 1}
		return true, 0
	}

	w.count++
	if w.count > rl.limit {
		return false, rl.window - now.Sub(w.start)
	}
	return true, 0
}

// PerIP -> limit berdasarkan alamat client.
func (rl *RateLimiter) PerIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.enforce(c, "ip:"+c.ClientIP())
	}
}

// PerToken -> limit berdasarkan nilai token di path. Request tanpa token
// jatuh ke limit IP saja.
func (rl *RateLimiter) PerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.Next()
			return
		}
		rl.enforce(c, "token:"+token)
	}
}

func (rl *RateLimiter) enforce(c *gin.Context, key string) {
	ok, retryAfter := rl.allow(key)
	if !ok {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"status":  false,
			"message": "Too many requests, please try again later",
		})
		utils.InfoLogger.Printf("Rate limit hit for %s on %s", key, c.Request.URL.Path)
		return
	}
	c.Next()
}

// Cleanup membuang window yang sudah lewat supaya map tidak tumbuh terus.
// Jalankan sebagai goroutine dari router.
func (rl *RateLimiter) Cleanup(interval time.Duration) {
	for {
		time.Sleep(interval)
		rl.mu.Lock()
		now := time.Now()
		for key, w := range rl.windows {
			if now.Sub(w.start) >= rl.window {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// NewStrictRateLimiter -> limiter lebih ketat untuk endpoint bernilai
// tinggi: login/register dan aksi checkout/close (payment-adjacent).
func NewStrictRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Minute/10), 10) // 10 per menit
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "Too many attempts, please wait a moment",
			})
			return
		}
		c.Next()
	}
}
