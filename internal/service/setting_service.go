package service

import (
	"encoding/json"
	"fmt"

	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/shopspring/decimal"
)

// SettingService 系统设置服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, models.JSON(value))
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetFeePolicy 获取运费策略（设置覆盖默认值）
// 配置缺失或脏数据时回退到默认值，不中断下单链路
func (s *SettingService) GetFeePolicy(defaults FeePolicy) (FeePolicy, error) {
	if s == nil {
		return defaults, nil
	}
	value, err := s.GetByKey(constants.SettingKeyFeePolicy)
	if err != nil {
		return defaults, err
	}
	if value == nil {
		return defaults, nil
	}

	policy := defaults
	if threshold, ok := parseSettingDecimal(value[constants.SettingFieldFreeShippingThreshold]); ok {
		policy.FreeShippingThreshold = threshold
	}
	if fee, ok := parseSettingDecimal(value[constants.SettingFieldFlatFee]); ok {
		policy.FlatFee = fee
	}
	return policy, nil
}

// UpdateFeePolicy 更新运费策略
func (s *SettingService) UpdateFeePolicy(threshold, flatFee decimal.Decimal) (FeePolicy, error) {
	if threshold.IsNegative() || flatFee.IsNegative() {
		return FeePolicy{}, fmt.Errorf("fee policy values must be non-negative")
	}
	_, err := s.Update(constants.SettingKeyFeePolicy, map[string]interface{}{
		constants.SettingFieldFreeShippingThreshold: threshold.String(),
		constants.SettingFieldFlatFee:               flatFee.String(),
	})
	if err != nil {
		return FeePolicy{}, err
	}
	return FeePolicy{FreeShippingThreshold: threshold, FlatFee: flatFee}, nil
}

func parseSettingDecimal(raw interface{}) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
