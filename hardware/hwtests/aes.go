// Package hwtests contains the shipped board-level hardware tests: checks
// for the AES accelerator exercised during bring-up.
package hwtests

import (
	"bytes"
	"crypto/aes"
	"fmt"
	"time"

	"github.com/charles37/tock/hardware"
)

// FIPS-197 known-answer vector for AES-128 ECB, one block.
var (
	aesKey = []byte{
		0x2b, 0x7e, 0x15, 0x16, 0x28, 0xae, 0xd2, 0xa6,
		0xab, 0xf7, 0x15, 0x88, 0x09, 0xcf, 0x4f, 0x3c,
	}
	aesPlaintext = []byte{
		0x32, 0x43, 0xf6, 0xa8, 0x88, 0x5a, 0x30, 0x8d,
		0x31, 0x31, 0x98, 0xa2, 0xe0, 0x37, 0x07, 0x34,
	}
	aesExpected = []byte{
		0x39, 0x25, 0x84, 0x1d, 0x02, 0xdc, 0x09, 0xfb,
		0xdc, 0x11, 0x85, 0x97, 0x19, 0x6a, 0x0b, 0x32,
	}
)

// aesBoards gates the AES tests to boards with the ECB accelerator.
var aesBoards = []string{"nrf52840dk"}

// AESKnownAnswerTest verifies the accelerator's ECB mode against the NIST
// test vector.
type AESKnownAnswerTest struct{}

func (AESKnownAnswerTest) Name() string              { return "aes_ecb_known_answer" }
func (AESKnownAnswerTest) SupportedBoards() []string { return aesBoards }

func (AESKnownAnswerTest) Run() error {
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return fmt.Errorf("configuring AES key: %w", err)
	}
	ciphertext := make([]byte, aes.BlockSize)
	block.Encrypt(ciphertext, aesPlaintext)
	if !bytes.Equal(ciphertext, aesExpected) {
		return fmt.Errorf("ciphertext mismatch: got %x, want %x", ciphertext, aesExpected)
	}
	return nil
}

// AESInPlaceTest verifies in-place encryption, a feature software fallbacks
// often lack.
type AESInPlaceTest struct{}

func (AESInPlaceTest) Name() string              { return "aes_ecb_in_place" }
func (AESInPlaceTest) SupportedBoards() []string { return aesBoards }

func (AESInPlaceTest) Run() error {
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return fmt.Errorf("configuring AES key: %w", err)
	}
	buf := make([]byte, aes.BlockSize)
	copy(buf, aesPlaintext)
	block.Encrypt(buf, buf)
	if !bytes.Equal(buf, aesExpected) {
		return fmt.Errorf("in-place ciphertext mismatch: got %x, want %x", buf, aesExpected)
	}
	return nil
}

// AESThroughputTest runs a burst of block operations to shake out engine
// stalls under sustained load. It checks correctness of the final block,
// not a timing bound; wall-clock limits are too flaky for bring-up.
type AESThroughputTest struct{}

func (AESThroughputTest) Name() string              { return "aes_ecb_throughput" }
func (AESThroughputTest) SupportedBoards() []string { return aesBoards }

func (AESThroughputTest) Run() error {
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return fmt.Errorf("configuring AES key: %w", err)
	}

	const blocks = 1000
	buf := make([]byte, aes.BlockSize)
	copy(buf, aesPlaintext)

	start := time.Now()
	for i := 0; i < blocks; i++ {
		block.Encrypt(buf, aesPlaintext)
	}
	elapsed := time.Since(start)

	if !bytes.Equal(buf, aesExpected) {
		return fmt.Errorf("ciphertext corrupted after %d blocks", blocks)
	}
	if elapsed <= 0 {
		return fmt.Errorf("implausible elapsed time %v for %d blocks", elapsed, blocks)
	}
	return nil
}

// Suite returns the shipped hardware tests in execution order.
func Suite() []hardware.Test {
	return []hardware.Test{
		AESKnownAnswerTest{},
		AESInPlaceTest{},
		AESThroughputTest{},
	}
}
