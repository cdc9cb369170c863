package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 角色常量的枚举值必须与 users.role 列的 enum 定义一致。
func TestUserRoleValues(t *testing.T) {
	assert.Equal(t, UserRole("student"), RoleStudent)
	assert.Equal(t, UserRole("teacher"), RoleTeacher)
	assert.Equal(t, UserRole("admin"), RoleAdmin)
}

func TestProfileTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "students", Student{}.TableName())
}
