package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"interview-scheduler/internal/domain"
	"interview-scheduler/internal/service"
	httpez "interview-scheduler/internal/transport/http/ez"
	mdw "interview-scheduler/internal/transport/http/middleware"
)

type SlotService interface {
	List(ctx context.Context, hrID string) ([]domain.TimeSlot, error)
	Create(ctx context.Context, in service.CreateInput) (*domain.TimeSlot, error)
	Update(ctx context.Context, owner, id string, p domain.SlotPatch) (*domain.TimeSlot, error)
	Delete(ctx context.Context, owner, id string) error
}

type TimeSlotHandler struct{ svc SlotService }

func NewTimeSlotHandler(svc SlotService) *TimeSlotHandler { return &TimeSlotHandler{svc: svc} }

type listQuery struct {
	HRID string `form:"hr_id"`
}

type createReq struct {
	HRID          string     `json:"hr_id"`
	StartTime     *time.Time `json:"start_time" binding:"required"`
	EndTime       *time.Time `json:"end_time" binding:"required"`
	CandidateName *string    `json:"candidate_name"`
	InterviewType *string    `json:"interview_type"`
}

// updateReq id / hr_id 不可修改，请求里带了也忽略；candidate_name 传 null 表示取消预约
type updateReq struct {
	StartTime     *time.Time       `json:"start_time" binding:"required"`
	EndTime       *time.Time       `json:"end_time" binding:"required"`
	CandidateName domain.OptString `json:"candidate_name"`
	InterviewType domain.OptString `json:"interview_type"`
}

// Mount 挂载 /timeslots 路由
func (h *TimeSlotHandler) Mount(g gin.IRoutes) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[listQuery, []domain.TimeSlot]{
		Method: http.MethodGet,
		Path:   "/timeslots",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQuery) ([]domain.TimeSlot, error) {
			return h.svc.List(c.Request.Context(), ownerOr(c, in.HRID))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[createReq, *domain.TimeSlot]{
		Method: http.MethodPost,
		Path:   "/timeslots",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createReq) (*domain.TimeSlot, error) {
			return h.svc.Create(c.Request.Context(), service.CreateInput{
				HRID:          ownerOr(c, in.HRID),
				StartTime:     *in.StartTime,
				EndTime:       *in.EndTime,
				CandidateName: in.CandidateName,
				InterviewType: in.InterviewType,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[updateReq, *domain.TimeSlot]{
		Method: http.MethodPut,
		Path:   "/timeslots/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *updateReq) (*domain.TimeSlot, error) {
			return h.svc.Update(c.Request.Context(), mdw.Owner(c), c.Param("id"), domain.SlotPatch{
				StartTime:     *in.StartTime,
				EndTime:       *in.EndTime,
				CandidateName: in.CandidateName,
				InterviewType: in.InterviewType,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/timeslots/:id",
		Binder: httpez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			return struct{}{}, h.svc.Delete(c.Request.Context(), mdw.Owner(c), c.Param("id"))
		},
	})
}

// token 里的 uid 优先于请求里的 hr_id
func ownerOr(c *gin.Context, supplied string) string {
	if o := mdw.Owner(c); o != "" {
		return o
	}
	return strings.TrimSpace(supplied)
}
