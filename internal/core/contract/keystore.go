package contract

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/consensys/gnark/backend/groth16"
)

// KeyStore groth16 密钥存储
type KeyStore interface {
	// Load 读取合约密钥，不存在时 ok 为 false
	Load(name string) (pk groth16.ProvingKey, vk groth16.VerifyingKey, ok bool, err error)
	// Save 保存合约密钥
	Save(name string, pk groth16.ProvingKey, vk groth16.VerifyingKey) error
}

// ============================================================================
// 内存实现
// ============================================================================

type keyPair struct {
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// MemoryKeyStore 进程内密钥存储，worker 与本地网络同进程时共享
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]keyPair
}

// NewMemoryKeyStore 创建内存密钥存储
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]keyPair)}
}

// Load 实现 KeyStore
func (s *MemoryKeyStore) Load(name string) (groth16.ProvingKey, groth16.VerifyingKey, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kp, ok := s.keys[name]
	return kp.pk, kp.vk, ok, nil
}

// Save 实现 KeyStore
func (s *MemoryKeyStore) Save(name string, pk groth16.ProvingKey, vk groth16.VerifyingKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[name] = keyPair{pk: pk, vk: vk}
	return nil
}

// ============================================================================
// 目录实现
// ============================================================================

// DirKeyStore 以文件形式缓存密钥：<dir>/<name>.pk 与 <dir>/<name>.vk
// 独立 worker 进程与 devnet 进程通过同一目录共享密钥
type DirKeyStore struct {
	dir string
}

// NewDirKeyStore 创建目录密钥存储
func NewDirKeyStore(dir string) *DirKeyStore {
	return &DirKeyStore{dir: dir}
}

func (s *DirKeyStore) paths(name string) (string, string) {
	return filepath.Join(s.dir, name+".pk"), filepath.Join(s.dir, name+".vk")
}

// Load 实现 KeyStore
func (s *DirKeyStore) Load(name string) (groth16.ProvingKey, groth16.VerifyingKey, bool, error) {
	pkPath, vkPath := s.paths(name)

	pkFile, err := os.Open(pkPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	defer pkFile.Close()

	vkFile, err := os.Open(vkPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	defer vkFile.Close()

	pk := groth16.NewProvingKey(curve)
	if _, err := pk.ReadFrom(pkFile); err != nil {
		return nil, nil, false, fmt.Errorf("解析 %s: %w", pkPath, err)
	}
	vk := groth16.NewVerifyingKey(curve)
	if _, err := vk.ReadFrom(vkFile); err != nil {
		return nil, nil, false, fmt.Errorf("解析 %s: %w", vkPath, err)
	}
	return pk, vk, true, nil
}

// Save 实现 KeyStore
func (s *DirKeyStore) Save(name string, pk groth16.ProvingKey, vk groth16.VerifyingKey) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	pkPath, vkPath := s.paths(name)
	if err := writeTo(pkPath, pk.WriteTo); err != nil {
		return err
	}
	return writeTo(vkPath, vk.WriteTo)
}

func writeTo(path string, write func(w io.Writer) (int64, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
