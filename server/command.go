package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"jdlmedia/core/apperr"
	"jdlmedia/logger"
	"jdlmedia/metrics"
)

// 命令事件，输出事件把 :input 换成 :output
const (
	EventFolderCreate      = "folders:create:input"
	EventFolderRename      = "folders:one:rename:input"
	EventFolderContent     = "folders:one:content:input"
	EventFolderDetails     = "folders:one:details:input"
	EventFolderEmplacement = "folders:one:emplacement:input"
	EventFolderList        = "folders:all:get:input"

	EventAudioList     = "audios:all:get:input"
	EventAudioGet      = "audios:one:get:by:id:input"
	EventAudioRename   = "audios:one:rename:input"
	EventAudioBookmark = "audios:one:bookmark:input"

	EventPlaylistCreate  = "playlists:create:input"
	EventPlaylistUpdate  = "playlists:one:update:input"
	EventPlaylistRename  = "playlists:one:rename:input" // 旧客户端使用的别名
	EventPlaylistGet     = "playlists:one:get:input"
	EventPlaylistList    = "playlists:all:get:input"
	EventPlaylistAdd     = "playlists:items:add:input"
	EventPlaylistRemove  = "playlists:items:remove:input"
	EventPlaylistReorder = "playlists:items:reorder:input"

	// EventServerError 无法解析的消息使用的输出事件
	EventServerError = "server:error:output"
)

// Request 命令请求 {event, requestId?, data}
type Request struct {
	Event     string          `json:"event"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// Response 命令响应，成功时带 data，失败时带 errors
type Response struct {
	Event     string      `json:"event"`
	RequestID string      `json:"requestId,omitempty"`
	Status    bool        `json:"status"`
	Data      interface{} `json:"data,omitempty"`
	Errors    apperr.List `json:"errors,omitempty"`
}

// HandlerFunc 处理一条命令，返回值作为响应 data
type HandlerFunc func(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error)

// OutputEvent folders:create:input -> folders:create:output
func OutputEvent(event string) string {
	return strings.TrimSuffix(event, ":input") + ":output"
}

// Dispatcher 按事件名分发命令
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// NewDispatcher 空的分发器，通过 Register 添加事件
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register 注册事件处理函数
func (d *Dispatcher) Register(event string, h HandlerFunc) {
	d.handlers[event] = h
}

// Has 事件是否已注册
func (d *Dispatcher) Has(event string) bool {
	_, ok := d.handlers[event]
	return ok
}

// Dispatch 执行命令。领域错误原样返回，基础设施错误记录日志后只返回 internal-server-error。
func (d *Dispatcher) Dispatch(ctx context.Context, ownerID string, req Request) Response {
	resp := Response{Event: OutputEvent(req.Event), RequestID: req.RequestID}

	handler, ok := d.handlers[req.Event]
	if !ok {
		metrics.CommandsTotal.WithLabelValues("unknown", metrics.StatusInvalid).Inc()
		resp.Errors = apperr.List{apperr.UnknownEvent}
		return resp
	}

	start := time.Now()
	data, err := handler(ctx, ownerID, req.Data)
	metrics.CommandDuration.WithLabelValues(req.Event).Observe(time.Since(start).Seconds())

	if err != nil {
		if list, ok := apperr.As(err); ok {
			metrics.CommandsTotal.WithLabelValues(req.Event, metrics.StatusInvalid).Inc()
			resp.Errors = list
			return resp
		}

		metrics.CommandsTotal.WithLabelValues(req.Event, metrics.StatusError).Inc()
		logger.Error("command failed",
			logger.Op(req.Event),
			logger.Owner(ownerID),
			logger.Payload(req.Data),
			logger.ErrorField(err))
		resp.Errors = apperr.List{apperr.Internal}
		return resp
	}

	metrics.CommandsTotal.WithLabelValues(req.Event, metrics.StatusOK).Inc()
	resp.Status = true
	resp.Data = data
	return resp
}

// decode 把 data 解析到 dst。缺失为 no-data-sent，字段类型不对为 fields/invalid。
func decode(data json.RawMessage, dst interface{}) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || !strings.HasPrefix(trimmed, "{") {
		return apperr.Of(apperr.NoDataSent)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Of(apperr.FieldInvalid.WithField(typeErr.Field))
		}
		return apperr.Of(apperr.NoDataSent)
	}
	return nil
}

// decodeFolderRef 读取 folderId：键必须存在，null 或空串表示根目录
func decodeFolderRef(data json.RawMessage) (*string, error) {
	var fields map[string]json.RawMessage
	if err := decode(data, &fields); err != nil {
		return nil, err
	}
	raw, ok := fields["folderId"]
	if !ok {
		return nil, apperr.Of(apperr.FieldRequired.WithField("folderId"))
	}
	if strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, apperr.Of(apperr.FieldInvalid.WithField("folderId"))
	}
	if id == "" {
		return nil, nil
	}
	return &id, nil
}
