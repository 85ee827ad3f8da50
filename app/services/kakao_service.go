package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fairway/app/messaging"
	"fairway/app/metrics"
	"fairway/app/models"
	"fairway/app/providers/kakao"
	"fairway/app/providers/solapi"
	"fairway/app/repositories"
)

const (
	logChannelKakao  = "kakao"
	alimTalkParallel = 8

	ModeLive       = "live"
	ModeSimulation = "simulation"
)

// FriendTalkSender delivers Kakao FriendTalk messages to channel friends.
type FriendTalkSender interface {
	Configured() bool
	SendFriendTalk(ctx context.Context, uuids []string, t kakao.Template) (*kakao.SendResult, error)
}

// AlimTalkSender delivers template based AlimTalk messages by phone number.
type AlimTalkSender interface {
	Configured() bool
	AlimTalk(to, text, templateID string, vars map[string]string) solapi.Message
	SendOne(ctx context.Context, msg solapi.Message) (solapi.Result, error)
}

// KakaoSendRequest overrides the stored draft for one send. Empty fields
// fall back to the draft.
type KakaoSendRequest struct {
	Title              string            `json:"title"`
	Content            string            `json:"content"`
	MessageType        string            `json:"messageType"`
	TemplateType       string            `json:"templateType"`
	TemplateID         string            `json:"templateId"`
	ButtonText         string            `json:"buttonText"`
	ButtonLink         string            `json:"buttonLink"`
	ImageURL           string            `json:"imageUrl"`
	FriendGroupID      *int              `json:"friendGroupId"`
	SelectedRecipients []string          `json:"selectedRecipients"`
	TemplateVariables  map[string]string `json:"templateVariables"`
}

// KakaoSendResult reports a Kakao send.
type KakaoSendResult struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	SuccessCount int      `json:"successCount"`
	FailCount    int      `json:"failCount"`
	TotalCount   int      `json:"totalCount"`
	Mode         string   `json:"mode"`
	Errors       []string `json:"errors,omitempty"`
}

// KakaoService sends Kakao channel drafts
type KakaoService struct {
	channels   repositories.ChannelRepository
	kakaoRepo  repositories.KakaoRepository
	logs       repositories.MessageLogRepository
	friendTalk FriendTalkSender
	alimTalk   AlimTalkSender
	log        *zap.Logger
	now        Clock
}

// NewKakaoService creates a new KakaoService
func NewKakaoService(repos repositories.Set, friendTalk FriendTalkSender, alimTalk AlimTalkSender, log *zap.Logger) *KakaoService {
	return &KakaoService{
		channels:   repos.Channels,
		kakaoRepo:  repos.Kakao,
		logs:       repos.Logs,
		friendTalk: friendTalk,
		alimTalk:   alimTalk,
		log:        log,
		now:        utcNow,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// receivers picks the raw recipient list: a friend group, then the
// request's selection, then the uuids stored on the draft.
func (s *KakaoService) receivers(post *models.ChannelPost, req KakaoSendRequest) ([]string, error) {
	groupID := req.FriendGroupID
	if groupID == nil {
		groupID = post.FriendGroupID
	}
	if groupID != nil && *groupID > 0 {
		g, err := s.kakaoRepo.GetGroup(*groupID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && !g.Active) {
			return nil, invalid("선택한 친구 그룹을 찾을 수 없습니다.")
		}
		if err != nil {
			return nil, err
		}
		if len(g.UUIDs) == 0 {
			return nil, noRecipients("선택한 친구 그룹에 등록된 친구가 없습니다.")
		}
		return g.UUIDs, nil
	}
	if len(req.SelectedRecipients) > 0 {
		return req.SelectedRecipients, nil
	}
	return post.RecipientUUIDs, nil
}

// friendUUIDs converts a phone number selection into friend uuids. A
// selection that does not start with a phone number is taken as uuids.
func (s *KakaoService) friendUUIDs(raw []string) ([]string, error) {
	if len(raw) == 0 || !messaging.LooksLikePhone(raw[0]) {
		return raw, nil
	}
	phones := make([]string, 0, len(raw))
	for _, p := range raw {
		phones = append(phones, messaging.NormalizePhone(p))
	}
	mapping, err := s.kakaoRepo.UUIDsByPhones(phones)
	if err != nil {
		return nil, fmt.Errorf("전화번호를 UUID로 변환하는 중 오류가 발생했습니다: %w", err)
	}
	uuids := make([]string, 0, len(phones))
	for _, p := range phones {
		if u, ok := mapping[p]; ok {
			uuids = append(uuids, u)
		}
	}
	if missing := len(phones) - len(uuids); missing > 0 {
		s.log.Warn("phones without kakao friend", zap.Int("count", missing))
	}
	if len(uuids) == 0 {
		return nil, noRecipients("전화번호에 해당하는 카카오 친구를 찾을 수 없습니다. 친구 목록을 동기화해주세요.")
	}
	return uuids, nil
}

// phonesFor resolves recipients to phone numbers, mapping uuids through
// the friend table.
func (s *KakaoService) phonesFor(raw []string) ([]string, error) {
	var phones, uuids []string
	for _, r := range raw {
		if messaging.LooksLikePhone(r) {
			phones = append(phones, messaging.NormalizePhone(r))
		} else {
			uuids = append(uuids, r)
		}
	}
	if len(uuids) > 0 {
		mapping, err := s.kakaoRepo.PhonesByUUIDs(uuids)
		if err != nil {
			return nil, err
		}
		for _, u := range uuids {
			if p, ok := mapping[u]; ok && p != "" {
				phones = append(phones, p)
			}
		}
	}
	return phones, nil
}

// Send delivers a Kakao draft. Without an admin key the send is simulated
// and only the draft's counters are updated.
func (s *KakaoService) Send(ctx context.Context, id int, req KakaoSendRequest) (*KakaoSendResult, error) {
	post, err := s.channels.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.Channel != models.ChannelKakao {
		return nil, repositories.ErrNotFound
	}

	content := firstNonEmpty(req.Content, post.Content)
	msgType := firstNonEmpty(req.MessageType, post.MessageType, models.TypeFriendTalk)
	if content == "" {
		return nil, invalid("메시지 내용이 없습니다.")
	}

	raw, err := s.receivers(post, req)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, noRecipients("수신자가 없습니다. 수신자를 선택해주세요.")
	}

	var receivers []string
	if msgType == models.TypeAlimTalk {
		receivers = raw
	} else if receivers, err = s.friendUUIDs(raw); err != nil {
		return nil, err
	}

	if !s.friendTalk.Configured() {
		return s.simulate(post, len(receivers))
	}

	var res *KakaoSendResult
	var logs []*models.MessageLog
	switch msgType {
	case models.TypeAlimTalk:
		res, logs, err = s.sendAlimTalk(ctx, post, req, content, receivers)
	default:
		res, logs, err = s.sendFriendTalk(ctx, post, req, content, receivers)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	post.SentAt = &now
	post.UpdatedAt = now
	post.SentCount = res.TotalCount
	post.SuccessCount = res.SuccessCount
	post.FailCount = res.FailCount
	post.SendErrors = append(models.StringList{}, res.Errors...)
	post.Status = models.StatusFailed
	if res.SuccessCount > 0 {
		post.Status = models.StatusSent
	}
	if err := s.channels.Update(post); err != nil {
		return nil, err
	}

	for _, l := range logs {
		l.ContentID = contentID(post.ID)
		l.MessageType = strings.ToLower(msgType)
		l.Channel = logChannelKakao
		l.SentAt = now
		if err := s.logs.Upsert(l); err != nil {
			s.log.Error("failed to write message log", zap.Int("id", post.ID), zap.Error(err))
		}
	}
	metrics.RecordMessages(models.ChannelKakao, res.SuccessCount, res.FailCount)

	res.Success = res.SuccessCount > 0
	if res.Success {
		res.Message = fmt.Sprintf("카카오 메시지가 발송되었습니다. (성공: %d, 실패: %d)", res.SuccessCount, res.FailCount)
	} else {
		res.Message = fmt.Sprintf("카카오 메시지 발송에 실패했습니다. (%s)", strings.Join(res.Errors, ", "))
	}
	s.log.Info("kakao message sent",
		zap.Int("id", post.ID),
		zap.String("type", msgType),
		zap.Int("success", res.SuccessCount),
		zap.Int("fail", res.FailCount))
	return res, nil
}

func (s *KakaoService) simulate(post *models.ChannelPost, count int) (*KakaoSendResult, error) {
	s.log.Warn("kakao admin key missing, simulating send", zap.Int("id", post.ID))
	now := s.now()
	post.Status = models.StatusSent
	post.SentAt = &now
	post.UpdatedAt = now
	post.SentCount = count
	post.SuccessCount = count
	post.FailCount = 0
	if err := s.channels.Update(post); err != nil {
		return nil, err
	}
	return &KakaoSendResult{
		Success:      true,
		Message:      "카카오 메시지가 저장되었습니다. (시뮬레이션 모드: 실제 발송은 KAKAO_ADMIN_KEY 설정 후 가능)",
		SuccessCount: count,
		TotalCount:   count,
		Mode:         ModeSimulation,
	}, nil
}

func (s *KakaoService) sendFriendTalk(ctx context.Context, post *models.ChannelPost, req KakaoSendRequest, content string, uuids []string) (*KakaoSendResult, []*models.MessageLog, error) {
	tmpl := kakao.BuildTemplate(kakao.Message{
		Title:        firstNonEmpty(req.Title, post.Title),
		Content:      content,
		TemplateType: firstNonEmpty(req.TemplateType, post.TemplateType, models.TemplateBasicText),
		ButtonText:   firstNonEmpty(req.ButtonText, post.ButtonText),
		ButtonLink:   firstNonEmpty(req.ButtonLink, post.ButtonLink),
		ImageURL:     firstNonEmpty(req.ImageURL, post.ImageURL),
	})

	res := &KakaoSendResult{TotalCount: len(uuids), Mode: ModeLive}
	accepted := map[string]bool{}
	sent, err := s.friendTalk.SendFriendTalk(ctx, uuids, tmpl)
	if err != nil {
		s.log.Error("friendtalk send failed", zap.Int("id", post.ID), zap.Error(err))
		res.FailCount = len(uuids)
		res.Errors = append(res.Errors, err.Error())
	} else {
		for _, u := range sent.Successful {
			accepted[u] = true
		}
		res.SuccessCount = len(sent.Successful)
		res.FailCount = len(uuids) - res.SuccessCount
	}

	phones, err := s.kakaoRepo.PhonesByUUIDs(uuids)
	if err != nil {
		s.log.Error("failed to resolve friend phones", zap.Int("id", post.ID), zap.Error(err))
		return res, nil, nil
	}
	var logs []*models.MessageLog
	for _, u := range uuids {
		phone := phones[u]
		if phone == "" {
			continue
		}
		status := models.StatusFailed
		if accepted[u] {
			status = models.StatusSent
		}
		logs = append(logs, &models.MessageLog{CustomerPhone: phone, Status: status})
	}
	return res, logs, nil
}

func (s *KakaoService) sendAlimTalk(ctx context.Context, post *models.ChannelPost, req KakaoSendRequest, content string, raw []string) (*KakaoSendResult, []*models.MessageLog, error) {
	if !s.alimTalk.Configured() {
		return nil, nil, notConfigured("알림톡 발송을 위해 SOLAPI_API_KEY와 SOLAPI_API_SECRET이 필요합니다.")
	}
	templateID := firstNonEmpty(post.TemplateID, req.TemplateID)
	if templateID == "" {
		return nil, nil, &Error{Kind: ErrTemplateRequired, Message: "알림톡 발송을 위해 템플릿 ID가 필요합니다. 메시지에 템플릿 ID를 설정해주세요."}
	}
	phones, err := s.phonesFor(raw)
	if err != nil {
		return nil, nil, err
	}
	if len(phones) == 0 {
		return nil, nil, noRecipients("수신자가 없습니다. 수신자를 선택해주세요.")
	}

	results := make([]solapi.Result, len(phones))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(alimTalkParallel)
	for i, phone := range phones {
		g.Go(func() error {
			msg := s.alimTalk.AlimTalk(phone, content, templateID, req.TemplateVariables)
			r, err := s.alimTalk.SendOne(gctx, msg)
			if err != nil {
				r = solapi.Result{To: phone, Status: "failed", ErrorMessage: err.Error()}
			}
			results[i] = r
			return nil
		})
	}
	// Per-recipient failures land in results; workers never return an error.
	_ = g.Wait()

	res := &KakaoSendResult{TotalCount: len(phones), Mode: ModeLive}
	logs := make([]*models.MessageLog, 0, len(phones))
	for i, r := range results {
		status := models.StatusFailed
		if r.Success() {
			res.SuccessCount++
			status = models.StatusSent
		} else {
			res.FailCount++
			msg := firstNonEmpty(r.ErrorMessage, "알림톡 발송 실패")
			res.Errors = append(res.Errors, msg)
		}
		logs = append(logs, &models.MessageLog{CustomerPhone: phones[i], Status: status})
	}
	return res, logs, nil
}
