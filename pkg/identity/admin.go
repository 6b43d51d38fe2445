package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Impersonator mints custom tokens with service-account credentials so operators can
// act as a given user (support, seeding). Sign in with the token via SignInWithCustomToken.
type Impersonator struct {
	client *auth.Client
}

func NewImpersonator(ctx context.Context, credentialsFile, projectID string) (*Impersonator, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}
	return &Impersonator{client: client}, nil
}

func (i *Impersonator) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := i.client.CustomToken(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("mint custom token for %s: %w", uid, err)
	}
	return token, nil
}
