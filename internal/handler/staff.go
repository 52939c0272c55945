package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/assignment"
	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/identity"
	"github.com/dencare-dev/staff-roster/backend/internal/selection"
	"github.com/dencare-dev/staff-roster/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/crypto/bcrypt"
)

// GetAllStaffIdentities 返回归一化后的员工身份列表
// 支持 keyword 子串搜索和 role 过滤，身份每次都从原始记录重新推导
func (h *Handler) GetAllStaffIdentities(w http.ResponseWriter, r *http.Request) {
	staffList, err := h.repository.GetAllStaff()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	keyword := r.URL.Query().Get("keyword")
	roleFilter := r.URL.Query().Get("role")

	identities := make([]*domain.StaffIdentity, 0)
	for _, si := range identity.ResolveAll(staffList) {
		if !identity.MatchKeyword(si, keyword) {
			continue
		}
		if roleFilter != "" && !si.HasRole(domain.Role(roleFilter)) {
			continue
		}
		identities = append(identities, si)
	}

	h.successResponse(w, r, "获取员工列表成功", identities)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string   `json:"username" validate:"required"`
		FullName     string   `json:"fullName" validate:"required"`
		Email        string   `json:"email" validate:"required,email"`
		Phone        string   `json:"phone"`
		EmployeeCode string   `json:"employeeCode"`
		Roles        []string `json:"roles" validate:"required,min=1,dive,oneof=dentist nurse"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 生成随机密码
	password := utils.GenerateRandomPassword(12)

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 插入员工到数据库中
	staff := &domain.Staff{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		EmployeeCode: req.EmployeeCode,
		Roles:        make([]domain.Role, 0, len(req.Roles)),
	}
	for _, role := range req.Roles {
		staff.Roles = append(staff.Roles, domain.Role(role))
	}

	if err := h.repository.CreateStaff(staff); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "staff_username_key":
				h.badRequest(w, r, errors.New("用户名已存在"))
			case pgErr.ConstraintName == "staff_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 准备邮件
	mailMessage := domain.MailMessage{
		Type: "create_staff",
		To:   staff.Email,
		Data: domain.CreateStaffMailData{
			FullName: req.FullName,
			Username: req.Username,
			Password: password,
		},
	}

	// 对邮件进行序列化
	emailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 将邮件发送到消息队列
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        emailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 成功响应
	h.successResponse(w, r, "员工创建成功", staff)
}

// GetReplacementCandidates 获取可以顶替某名员工的候选列表
// 被替换员工在所选槽位中的角色必须是唯一的，同时担任两种角色时直接拒绝
// 这里必须使用跨月份合并后的选择，而不是只看当前可见月份
func (h *Handler) GetReplacementCandidates(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	store := h.sessions.Session(selection.SessionContext{
		OperatorID: myInfo.ID,
		Username:   myInfo.Username,
	}, time.Now().Format("2006-01"))

	if store.TotalSelected() == 0 {
		h.errorResponse(w, r, "尚未选择任何槽位")
		return
	}

	oldStaffIDParam := r.URL.Query().Get("staffID")
	oldStaffID, err := strconv.ParseInt(oldStaffIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "员工ID无效")
		return
	}

	selectedSlots, missing := store.SelectedSlots()
	if missing > 0 {
		h.errorResponse(w, r, "部分所选槽位的数据缺失，请刷新后重试")
		return
	}

	role, err := assignment.ResolveReplacementRole(oldStaffID, selectedSlots)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	staffList, err := h.repository.GetAllStaff()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	candidates := make([]*domain.StaffIdentity, 0)
	for _, si := range identity.ResolveAll(staffList) {
		if si.ID == oldStaffID {
			continue
		}
		if !si.HasRole(role) {
			continue
		}
		candidates = append(candidates, si)
	}

	h.successResponse(w, r, "获取替换候选成功", struct {
		Role       domain.Role             `json:"role"`
		Candidates []*domain.StaffIdentity `json:"candidates"`
	}{
		Role:       role,
		Candidates: candidates,
	})
}
