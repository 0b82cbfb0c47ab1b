package model

import "github.com/golang-jwt/jwt/v5"

// ServiceClaims are JWT claims identifying a calling service
type ServiceClaims struct {
	ServiceName string `json:"serviceName"`
	jwt.RegisteredClaims
}
