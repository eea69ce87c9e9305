// Package codec encodes protocol messages as protobuf frames.
//
// A frame is a google.protobuf.Struct with three fields: "type" (string),
// "id" (number) and "payload" (any JSON value).
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/spymaster/internal/protocol"
)

const (
	fieldType    = "type"
	fieldID      = "id"
	fieldPayload = "payload"
)

// NewMessage 创建一个新消息
// 注意: 使用完毕后可调用 PutMessage 归还对象到池
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	return NewReply(msgType, 0, payload)
}

// NewReply 创建带请求 ID 的消息
func NewReply(msgType protocol.MessageType, id uint64, payload any) (*protocol.Message, error) {
	msg := GetMessage()
	msg.Type = msgType
	msg.ID = id

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, fmt.Errorf("编码 %s 消息失败: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// NewErrorMessage 创建错误消息，id 为对应请求的 ID
func NewErrorMessage(id uint64, code int) *protocol.Message {
	msg, _ := NewReply(protocol.MsgError, id, protocol.ErrorPayload{
		Code:    code,
		Message: protocol.ErrorMessages[code],
	})
	return msg
}

// Encode 将消息编码为 Protobuf 字节
func Encode(m *protocol.Message) ([]byte, error) {
	frame := getFrame()
	defer putFrame(frame)

	frame.Fields = map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(m.Type)),
		fieldID:   structpb.NewNumberValue(float64(m.ID)),
	}
	if len(m.Payload) > 0 {
		var v any
		if err := json.Unmarshal(m.Payload, &v); err != nil {
			return nil, fmt.Errorf("无效的 payload: %w", err)
		}
		pv, err := structpb.NewValue(v)
		if err != nil {
			return nil, err
		}
		frame.Fields[fieldPayload] = pv
	}

	return proto.Marshal(frame)
}

// Decode 从 Protobuf 字节解码消息
// 注意: 使用完毕后可调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	frame := getFrame()
	defer putFrame(frame)

	if err := proto.Unmarshal(data, frame); err != nil {
		return nil, err
	}

	typ := frame.Fields[fieldType].GetStringValue()
	if typ == "" {
		return nil, fmt.Errorf("缺少消息类型")
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(typ)
	msg.ID = uint64(frame.Fields[fieldID].GetNumberValue())

	if pv, ok := frame.Fields[fieldPayload]; ok {
		payload, err := json.Marshal(pv.AsInterface())
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = payload
	}
	return msg, nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("解析 %s 消息失败: %w", msg.Type, err)
	}
	return &payload, nil
}
