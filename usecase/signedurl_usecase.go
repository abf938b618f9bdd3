package usecase

import (
	"context"

	"postpilot/domain/apperror"
	"postpilot/domain/dto"
	"postpilot/infrastructure/clients/worker"
)

type ISignedURLUsecase interface {
	IssueSignedURL(ctx context.Context, userID string, req dto.SignedURLRequest) (*dto.SignedURLResponse, error)
}

type signedURLUsecase struct {
	workerClient worker.IWorkerClient
	bucketName   string
	accountID    string
}

func NewSignedURLUsecase(workerClient worker.IWorkerClient, bucketName, accountID string) ISignedURLUsecase {
	return &signedURLUsecase{workerClient: workerClient, bucketName: bucketName, accountID: accountID}
}

func (u *signedURLUsecase) IssueSignedURL(ctx context.Context, userID string, req dto.SignedURLRequest) (*dto.SignedURLResponse, error) {
	if userID == "" {
		return nil, apperror.New(apperror.Unauthenticated, "caller identity required")
	}
	if req.FileName == "" || req.Operation == "" {
		return nil, apperror.New(apperror.InvalidArgument, "fileName and operation are required")
	}
	if req.Operation != "read" && req.Operation != "write" {
		return nil, apperror.New(apperror.InvalidArgument, "operation must be either %q or %q", "read", "write")
	}

	signedURL, err := u.workerClient.IssueSignedURL(ctx, req.FileName, req.Operation, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SignedURLResponse{
		SignedURL:  signedURL,
		BucketName: u.bucketName,
		AccountID:  u.accountID,
	}, nil
}
