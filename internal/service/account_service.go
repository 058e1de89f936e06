package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"wms/internal/model"
	"wms/internal/repository"
	"wms/internal/token"
)

// AccountService manages sign-in accounts. Passwords are stored as bcrypt hashes
// and never returned.
type AccountService interface {
	Create(ctx context.Context, actor token.Identity, in model.Account) (*model.Account, error)
	Get(ctx context.Context, id int64) (*model.Account, error)
	List(ctx context.Context, page, limit int) (model.Page[model.Account], error)
	Update(ctx context.Context, actor token.Identity, id int64, in model.Account) (*model.Account, error)
	Delete(ctx context.Context, actor token.Identity, id int64) error
}

type accountService struct {
	repo      repository.AccountRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewAccountService(repo repository.AccountRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) AccountService {
	return &accountService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func sanitize(a *model.Account) *model.Account {
	a.Password = ""
	return a
}

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *accountService) Create(ctx context.Context, actor token.Identity, in model.Account) (*model.Account, error) {
	if !in.Role.Value.Valid() {
		return nil, invalid("unknown role %q", in.Role.Value)
	}
	if in.Password == "" {
		return nil, invalid("password is required")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := in
	account.ID = 0
	account.Password = hash
	account.Role = model.NewRole(in.Role.Value)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &account); err != nil {
			return translate(err, "account")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionCreateAccount, "account", account.ID, map[string]any{
			"username": account.Username,
			"role":     account.Role.Value,
			"active":   account.Active,
		})
	})
	if err != nil {
		return nil, err
	}
	return sanitize(&account), nil
}

func (s *accountService) Get(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "account")
	}
	return sanitize(account), nil
}

func (s *accountService) List(ctx context.Context, page, limit int) (model.Page[model.Account], error) {
	accounts, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return model.Page[model.Account]{}, fmt.Errorf("list accounts: %w", err)
	}
	for i := range accounts {
		sanitize(&accounts[i])
	}
	return model.Page[model.Account]{Items: accounts, Total: total, Page: page, Limit: limit}, nil
}

// Update applies in to account id. Only ADMIN may change role or active.
func (s *accountService) Update(ctx context.Context, actor token.Identity, id int64, in model.Account) (*model.Account, error) {
	if in.ID != 0 && in.ID != id {
		return nil, invalid("body id %d does not match path id %d", in.ID, id)
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "account")
	}

	isAdmin := actor.Role == model.RoleAdmin
	if in.Role.Value != "" && in.Role.Value != account.Role.Value {
		if !isAdmin {
			return nil, fmt.Errorf("%w: only ADMIN may change roles", ErrForbidden)
		}
		if !in.Role.Value.Valid() {
			return nil, invalid("unknown role %q", in.Role.Value)
		}
		account.Role = model.NewRole(in.Role.Value)
	}
	if in.Active != account.Active {
		if !isAdmin {
			return nil, fmt.Errorf("%w: only ADMIN may change the active flag", ErrForbidden)
		}
		account.Active = in.Active
	}

	account.Firstname = in.Firstname
	account.Lastname = in.Lastname
	account.Email = in.Email
	account.Phone = in.Phone
	account.Username = in.Username
	passwordChanged := in.Password != ""
	if passwordChanged {
		if account.Password, err = hashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, account); err != nil {
			return translate(err, "account")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionUpdateAccount, "account", account.ID, map[string]any{
			"username":         account.Username,
			"role":             account.Role.Value,
			"active":           account.Active,
			"password_changed": passwordChanged,
		})
	})
	if err != nil {
		return nil, err
	}
	return sanitize(account), nil
}

func (s *accountService) Delete(ctx context.Context, actor token.Identity, id int64) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return translate(err, "account")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionDeleteAccount, "account", id, nil)
	})
}
