package signer

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	kmslib "github.com/aws/aws-sdk-go/service/kms"
)

// KMSClient is the subset of the AWS KMS API used to sign with an asymmetric secp256k1 key.
// *kms.KMS implements it.
type KMSClient interface {
	GetPublicKey(input *kmslib.GetPublicKeyInput) (*kmslib.GetPublicKeyOutput, error)
	Sign(input *kmslib.SignInput) (*kmslib.SignOutput, error)
}

var _ KMSClient = (*kmslib.KMS)(nil)

// KMSConfig locates a KMS key. AWSProfile is optional; when empty the AWS environment variables
// determine the credentials.
type KMSConfig struct {
	KeyID      string `mapstructure:"key_id" yaml:"key_id"`
	KeyRegion  string `mapstructure:"key_region" yaml:"key_region"`
	AWSProfile string `mapstructure:"aws_profile" yaml:"aws_profile"`
}

// IsSet reports whether a key id has been configured.
func (c KMSConfig) IsSet() bool {
	return c.KeyID != ""
}

func (c KMSConfig) validate() error {
	if c.KeyID == "" {
		return errors.New("KMS key ID is required")
	}
	if c.KeyRegion == "" {
		return errors.New("KMS key region is required")
	}

	return nil
}

// NewKMSClient creates an AWS KMS client for the region of cfg.
func NewKMSClient(cfg KMSConfig) (KMSClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid KMS config: %w", err)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(cfg.KeyRegion)},
		Profile:           cfg.AWSProfile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return kmslib.New(sess), nil
}

// spki is the SubjectPublicKeyInfo structure KMS returns public keys in.
type spki struct {
	AlgorithmIdentifier pkix.AlgorithmIdentifier
	SubjectPublicKey    asn1.BitString
}

// ecdsaSig is the DER structure of a KMS ECDSA signature.
type ecdsaSig struct {
	R asn1.RawValue
	S asn1.RawValue
}
