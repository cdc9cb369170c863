package service

import (
	"mime/multipart"
	"path/filepath"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/internal/repository"
	"safa_quest_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserService 用户资料维护（头像、语言偏好等）
type UserService struct {
	UserRepo       *repository.UserRepository
	StorageService *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{UserRepo: userRepo, StorageService: storage}
}

var allowedAvatarExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// UploadAvatar 保存头像文件并更新用户记录，返回可访问的URL
func (s *UserService) UploadAvatar(c *gin.Context, userID uint, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExt[ext] {
		return "", util.ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	filename := "avatars/" + uuid.NewString() + ext
	url, err := s.StorageService.Upload(c, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	if err := s.UserRepo.UpdateAvatar(userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// UpdateLanguage 更新界面语言偏好
func (s *UserService) UpdateLanguage(userID uint, language string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	user.Language = language
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
