package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"interview-scheduler/internal/core/config"
	resp "interview-scheduler/internal/transport/http/response"
)

//go:embed templates/*.html
var files embed.FS

const monthLayout = "2006-01"

// Month 日历网格：LeadingBlanks 为 1 号之前的空格数（周日为一周第一天）
type Month struct {
	Key           string // YYYY-MM
	Title         string
	Prev, Next    string
	LeadingBlanks []struct{}
	Days          []Day
}

type Day struct {
	Num  int
	Date string // YYYY-MM-DD
}

// ParseMonth parses YYYY-MM; empty input falls back to def.
func ParseMonth(s, def string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = def
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("month: must be YYYY-MM, got %q", s)
	}
	return t, nil
}

func BuildMonth(first time.Time) Month {
	first = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()
	m := Month{
		Key:           first.Format(monthLayout),
		Title:         first.Format("January 2006"),
		Prev:          first.AddDate(0, -1, 0).Format(monthLayout),
		Next:          first.AddDate(0, 1, 0).Format(monthLayout),
		LeadingBlanks: make([]struct{}, int(first.Weekday())),
		Days:          make([]Day, 0, n),
	}
	for d := 1; d <= n; d++ {
		m.Days = append(m.Days, Day{Num: d, Date: first.AddDate(0, 0, d-1).Format("2006-01-02")})
	}
	return m
}

type templatesOut struct {
	Slots          []config.SlotTemplate `json:"slots"`
	InterviewTypes []string              `json:"interview_types"`
}

// pageScript 注入页面 JS 的配置
type pageScript struct {
	Owner string `json:"owner"`
	Month string `json:"month"`
}

type page struct {
	Owner  string
	Month  Month
	Script pageScript
}

type Handler struct{ cfg config.UI }

func NewHandler(cfg config.UI) *Handler { return &Handler{cfg: cfg} }

// Mount 注册页面模板和路由
func (h *Handler) Mount(r *gin.Engine) error {
	tmpl, err := template.ParseFS(files, "templates/*.html")
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	r.GET("/", h.index)
	r.GET("/slot-templates", h.templates)
	return nil
}

func (h *Handler) index(c *gin.Context) {
	first, err := ParseMonth(c.Query("month"), h.cfg.Month)
	if err != nil {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	m := BuildMonth(first)
	c.HTML(http.StatusOK, "index.html", page{
		Owner:  h.cfg.Owner,
		Month:  m,
		Script: pageScript{Owner: h.cfg.Owner, Month: m.Key},
	})
}

func (h *Handler) templates(c *gin.Context) {
	out := templatesOut{Slots: h.cfg.Slots, InterviewTypes: h.cfg.InterviewTypes}
	if out.Slots == nil {
		out.Slots = []config.SlotTemplate{}
	}
	if out.InterviewTypes == nil {
		out.InterviewTypes = []string{}
	}
	c.JSON(http.StatusOK, out)
}
