package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/domain"
	operatorsvc "github.com/zezva802/Banking-system/pkg/service/operator"
	"github.com/zezva802/Banking-system/pkg/testutils"
	"github.com/zezva802/Banking-system/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

func TestParseOperatorFlags(t *testing.T) {
	in, err := parseOperatorFlags([]string{
		"-email", "ops@bank.ge",
		"-name", "Ana",
		"-surname", "Gelashvili",
		"-private-number", "01001012345",
		"-dob", "1988-11-02",
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "ops@bank.ge", in.Email)
	assert.Equal(t, time.Date(1988, 11, 2, 0, 0, 0, 0, time.UTC), in.DateOfBirth)
}

func TestParseOperatorFlags_Errors(t *testing.T) {
	_, err := parseOperatorFlags([]string{"-email", "ops@bank.ge"}, io.Discard)
	require.Error(t, err)
	assert.Equal(t, "missing -dob, -name, -private-number, -surname", err.Error())

	_, err = parseOperatorFlags([]string{
		"-email", "a@b.ge", "-name", "A", "-surname", "B",
		"-private-number", "01001012345", "-dob", "02/11/1988",
	}, io.Discard)
	assert.ErrorContains(t, err, "YYYY-MM-DD")

	_, err = parseOperatorFlags([]string{"-unknown"}, io.Discard)
	assert.Error(t, err)
}

func TestReadLine(t *testing.T) {
	pw, err := readLine(strings.NewReader("hunter22\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter22", pw)

	pw, err = readLine(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	_, err = readLine(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestCreateOperator(t *testing.T) {
	store := testutils.NewStore()
	svc := operatorsvc.New(store.UoW(), &config.Provisioning{PasswordBcryptCost: bcrypt.MinCost}, testutils.DiscardLogger())
	in := &operatorInput{
		Name:          "Ana",
		Surname:       "Gelashvili",
		Email:         "Ops@Bank.ge",
		PrivateNumber: "01001012345",
		DateOfBirth:   time.Date(1988, 11, 2, 0, 0, 0, 0, time.UTC),
	}

	var out bytes.Buffer
	require.NoError(t, createOperator(context.Background(), svc, in, "long-password", &out))
	assert.Contains(t, out.String(), "Operator ops@bank.ge created")

	u, err := store.UoW().UserRepository().GetByEmail(context.Background(), "ops@bank.ge")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, u.Role)
	assert.True(t, utils.CheckPasswordHash("long-password", u.PasswordHash))

	err = createOperator(context.Background(), svc, in, "long-password", &out)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRun_Usage(t *testing.T) {
	tests := [][]string{
		nil,
		{"deploy"},
		{"migrate"},
		{"migrate", "sideways"},
		{"create-operator", "-email", "x@y.ge"},
	}
	for _, args := range tests {
		err := run(context.Background(), args, nil, io.Discard)
		assert.ErrorIs(t, err, errUsage, "%v", args)
	}
}
