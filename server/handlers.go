package server

import (
	"context"
	"encoding/json"

	"jdlmedia/core/apperr"
	"jdlmedia/core/audio"
	"jdlmedia/core/folder"
	"jdlmedia/core/playlist"
)

// APIHandler 把命令映射到文件夹/音频/歌单服务
type APIHandler struct {
	folders   *folder.Service
	audios    *audio.Service
	playlists *playlist.Service
}

// NewAPIHandler 创建命令处理器
func NewAPIHandler(folders *folder.Service, audios *audio.Service, playlists *playlist.Service) *APIHandler {
	return &APIHandler{folders: folders, audios: audios, playlists: playlists}
}

// Register 注册全部命令
func (h *APIHandler) Register(d *Dispatcher) {
	d.Register(EventFolderCreate, h.CreateFolder)
	d.Register(EventFolderRename, h.RenameFolder)
	d.Register(EventFolderContent, h.FolderContent)
	d.Register(EventFolderDetails, h.FolderDetails)
	d.Register(EventFolderEmplacement, h.FolderEmplacement)
	d.Register(EventFolderList, h.ListFolders)

	d.Register(EventAudioList, h.ListAudios)
	d.Register(EventAudioGet, h.GetAudio)
	d.Register(EventAudioRename, h.RenameAudio)
	d.Register(EventAudioBookmark, h.BookmarkAudio)

	d.Register(EventPlaylistCreate, h.CreatePlaylist)
	d.Register(EventPlaylistUpdate, h.UpdatePlaylist)
	d.Register(EventPlaylistRename, h.UpdatePlaylist)
	d.Register(EventPlaylistGet, h.GetPlaylist)
	d.Register(EventPlaylistList, h.ListPlaylists)
	d.Register(EventPlaylistAdd, h.AddPlaylistItems)
	d.Register(EventPlaylistRemove, h.RemovePlaylistItems)
	d.Register(EventPlaylistReorder, h.ReorderPlaylistItems)
}

// ========== 文件夹 ==========

func (h *APIHandler) CreateFolder(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in folder.CreateInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.folders.Create(ctx, ownerID, in)
}

func (h *APIHandler) RenameFolder(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in folder.RenameInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.folders.Rename(ctx, ownerID, in)
}

func (h *APIHandler) FolderContent(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	folderID, err := decodeFolderRef(data)
	if err != nil {
		return nil, err
	}
	return h.folders.Content(ctx, ownerID, folderID)
}

func (h *APIHandler) FolderDetails(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	folderID, err := decodeFolderRef(data)
	if err != nil {
		if apperr.HasCode(err, apperr.NoDataSent.Code) {
			return nil, apperr.Of(apperr.FieldRequired.WithField("folderId"))
		}
		return nil, err
	}
	if folderID == nil {
		return nil, apperr.Of(apperr.FieldRequired.WithField("folderId"))
	}
	return h.folders.Details(ctx, ownerID, *folderID)
}

// FolderEmplacement 面包屑
func (h *APIHandler) FolderEmplacement(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	folderID, err := decodeFolderRef(data)
	if err != nil {
		return nil, err
	}
	return h.folders.Breadcrumbs(ctx, ownerID, folderID)
}

func (h *APIHandler) ListFolders(ctx context.Context, ownerID string, _ json.RawMessage) (interface{}, error) {
	return h.folders.List(ctx, ownerID)
}

// ========== 音频 ==========

func (h *APIHandler) ListAudios(ctx context.Context, ownerID string, _ json.RawMessage) (interface{}, error) {
	return h.audios.List(ctx, ownerID)
}

func (h *APIHandler) GetAudio(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.audios.Get(ctx, ownerID, in.ID)
}

func (h *APIHandler) RenameAudio(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in audio.RenameInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.audios.Rename(ctx, ownerID, in)
}

func (h *APIHandler) BookmarkAudio(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in audio.BookmarkInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.audios.SetBookmark(ctx, ownerID, in)
}

// ========== 歌单 ==========

func (h *APIHandler) CreatePlaylist(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in playlist.CreateInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.playlists.Create(ctx, ownerID, in)
}

func (h *APIHandler) UpdatePlaylist(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in playlist.UpdateInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.playlists.Update(ctx, ownerID, in)
}

func (h *APIHandler) GetPlaylist(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.playlists.Get(ctx, ownerID, in.ID)
}

func (h *APIHandler) ListPlaylists(ctx context.Context, ownerID string, _ json.RawMessage) (interface{}, error) {
	return h.playlists.List(ctx, ownerID)
}

func (h *APIHandler) AddPlaylistItems(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in playlist.ItemsInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.playlists.AddItems(ctx, ownerID, in)
}

func (h *APIHandler) RemovePlaylistItems(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in playlist.RemoveInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.playlists.RemoveContent(ctx, ownerID, in)
}

func (h *APIHandler) ReorderPlaylistItems(ctx context.Context, ownerID string, data json.RawMessage) (interface{}, error) {
	var in playlist.ItemsInput
	if err := decode(data, &in); err != nil {
		return nil, err
	}
	return h.playlists.ReorderContent(ctx, ownerID, in)
}
