package service

import (
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/monitoring"
	"lake-backend/internal/repository/interfaces"
	"lake-backend/internal/storage"
	"lake-backend/internal/util"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgPasswordMismatch   = "Password fields didn't match."
	msgPasswordTooShort   = "Ensure this field has at least 8 characters."
	msgUsernameTaken      = "A user with that username already exists."
	msgUsernameInvalid    = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgInvalidCredentials = "Invalid credentials."
	msgNotImage           = "Upload a valid image."
)

// 令牌在黑名单中保留的时间，与令牌有效期一致
const blacklistTTL = 24 * time.Hour

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo       interfaces.UserRepository
	uploader       storage.Uploader
	emailService   *EmailService
	clock          util.Clock
	tokenBlacklist map[string]time.Time
	blacklistMutex sync.Mutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, uploader storage.Uploader, emailService *EmailService) *UserService {
	return &UserService{
		userRepo:       userRepo,
		uploader:       uploader,
		emailService:   emailService,
		clock:          util.NewRealClock(),
		tokenBlacklist: make(map[string]time.Time),
	}
}

// Register 注册新用户，所有字段错误一次性返回
func (s *UserService) Register(input *model.RegisterInput) (*model.User, error) {
	validationErr := apperrors.New(apperrors.ErrValidation, "数据验证失败")

	username := strings.TrimSpace(input.Username)
	if !util.IsValidUsername(username) {
		validationErr.AddField("username", msgUsernameInvalid)
	}
	if len(input.Password) < model.MinPasswordLength {
		validationErr.AddField("password", msgPasswordTooShort)
	}
	if input.Password != input.Password2 {
		validationErr.AddField("password", msgPasswordMismatch)
	}
	if !validationErr.HasFields() {
		existing, err := s.userRepo.FindByUsername(username)
		if err != nil {
			return nil, storageError(err, "查询用户失败")
		}
		if existing != nil {
			validationErr.AddField("username", msgUsernameTaken)
		}
	}
	if validationErr.HasFields() {
		util.Logger.Warn("注册数据验证失败", zap.String("username", username), zap.Any("fields", validationErr.Fields))
		return nil, validationErr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "生成密码哈希失败", err)
	}

	now := s.clock.Now()
	user := &model.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		// 并发注册同名用户时由唯一约束兜底
		if apperrors.Is(err, apperrors.ErrUserExists) {
			return nil, apperrors.NewFieldError("username", msgUsernameTaken)
		}
		return nil, storageError(err, "创建用户失败")
	}

	monitoring.RegisterSuccess.Inc()
	util.Logger.Info("用户注册成功", zap.Int("user_id", user.ID))
	s.emailService.SendWelcomeEmail(user)
	return user, nil
}

var (
	comparePassword = bcrypt.CompareHashAndPassword

	dummyHashOnce sync.Once
	dummyHash     []byte
)

// missingUserHash 用户不存在时参与比较的哈希，与真实账户的比较耗时一致
func missingUserHash() []byte {
	dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("lake-missing-user"), bcrypt.DefaultCost)
		if err != nil {
			util.Logger.Error("生成占位哈希失败", util.Error(err))
			return
		}
		dummyHash = hash
	})
	return dummyHash
}

// Login 校验用户名和密码，任何认证失败都返回同一个非字段错误
func (s *UserService) Login(username, password string) (*model.User, error) {
	invalid := apperrors.NewNonFieldError(apperrors.ErrInvalidCredentials, msgInvalidCredentials)

	if username == "" || password == "" {
		monitoring.LoginFailure.WithLabelValues("missing_fields").Inc()
		return nil, invalid
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, storageError(err, "查询用户失败")
	}
	if user == nil {
		_ = comparePassword(missingUserHash(), []byte(password))
		util.Logger.Warn("登录失败，用户不存在", zap.String("username", username))
		monitoring.LoginFailure.WithLabelValues("unknown_user").Inc()
		return nil, invalid
	}

	if err := comparePassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.Logger.Warn("登录失败，密码不正确", zap.Int("user_id", user.ID))
		monitoring.LoginFailure.WithLabelValues("bad_password").Inc()
		return nil, invalid
	}

	monitoring.LoginSuccess.Inc()
	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, storageError(err, "查询用户失败")
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// UpdateProfile 只修改请求中出现的字段
func (s *UserService) UpdateProfile(userID int, update *model.ProfileUpdate) (*model.User, error) {
	if update.Bio != nil && tooLong(*update.Bio, model.MaxBioLength) {
		return nil, apperrors.NewFieldError("bio", fmt.Sprintf("Ensure this field has no more than %d characters.", model.MaxBioLength))
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Email != nil {
		user.Email = strings.TrimSpace(*update.Email)
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, storageError(err, "更新用户失败")
	}
	util.Logger.Info("用户资料已更新", zap.Int("user_id", userID))
	return user, nil
}

// UpdateProfilePicture 上传新头像并删除旧文件
func (s *UserService) UpdateProfilePicture(userID int, file *multipart.FileHeader) (*model.User, error) {
	return s.replaceImage(userID, file, "profile_picture", "profiles", func(u *model.User) *string {
		return &u.ProfilePicture
	})
}

// UpdateCoverPhoto 上传新封面图并删除旧文件
func (s *UserService) UpdateCoverPhoto(userID int, file *multipart.FileHeader) (*model.User, error) {
	return s.replaceImage(userID, file, "cover_photo", "covers", func(u *model.User) *string {
		return &u.CoverPhoto
	})
}

func (s *UserService) replaceImage(userID int, file *multipart.FileHeader, field, dir string, target func(*model.User) *string) (*model.User, error) {
	if file == nil || !util.IsImageUpload(file) {
		return nil, apperrors.NewFieldError(field, msgNotImage)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadFile(file, storage.ObjectPath(dir, file))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "上传文件失败", err)
	}

	ref := target(user)
	old := *ref
	*ref = url
	if err := s.userRepo.Update(user); err != nil {
		s.discard(url)
		return nil, storageError(err, "更新用户失败")
	}
	if old != "" {
		s.discard(old)
	}
	return user, nil
}

func (s *UserService) discard(url string) {
	if err := s.uploader.Delete(url); err != nil {
		util.Logger.Warn("删除文件失败", zap.Error(err), zap.String("url", url))
	}
}

// DeleteAccount 删除账户，帖子、评论、点赞、关注和通知随之级联删除
func (s *UserService) DeleteAccount(userID int) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return storageError(err, "删除用户失败")
	}
	for _, url := range []string{user.ProfilePicture, user.CoverPhoto} {
		if url != "" {
			s.discard(url)
		}
	}
	util.Logger.Info("账户已删除", zap.Int("user_id", userID))
	return nil
}

// SearchUsers 按关键字搜索用户
func (s *UserService) SearchUsers(keyword string, page, pageSize int) ([]*model.User, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	users, total, err := s.userRepo.Search(strings.TrimSpace(keyword), page, pageSize)
	if err != nil {
		return nil, 0, storageError(err, "搜索用户失败")
	}
	return users, total, nil
}

// Logout 将当前令牌加入黑名单
func (s *UserService) Logout(token string) error {
	if token == "" {
		return apperrors.New(apperrors.ErrUnauthorized, "缺少令牌")
	}
	s.blacklistMutex.Lock()
	defer s.blacklistMutex.Unlock()

	now := s.clock.Now()
	for t, expiry := range s.tokenBlacklist {
		if now.After(expiry) {
			delete(s.tokenBlacklist, t)
		}
	}
	s.tokenBlacklist[token] = now.Add(blacklistTTL)
	util.Logger.Info("用户注销，令牌已加入黑名单")
	return nil
}

func (s *UserService) IsTokenBlacklisted(token string) bool {
	s.blacklistMutex.Lock()
	defer s.blacklistMutex.Unlock()
	expiry, exists := s.tokenBlacklist[token]
	if !exists {
		return false
	}
	if s.clock.Now().After(expiry) {
		delete(s.tokenBlacklist, token)
		return false
	}
	return true
}

type UserServiceInterface interface {
	Register(input *model.RegisterInput) (*model.User, error)
	Login(username, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateProfile(userID int, update *model.ProfileUpdate) (*model.User, error)
	UpdateProfilePicture(userID int, file *multipart.FileHeader) (*model.User, error)
	UpdateCoverPhoto(userID int, file *multipart.FileHeader) (*model.User, error)
	DeleteAccount(userID int) error
	SearchUsers(keyword string, page, pageSize int) ([]*model.User, int, error)
	Logout(token string) error
	IsTokenBlacklisted(token string) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
