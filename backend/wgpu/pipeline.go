// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/vertex_color.wgsl
var shaderSource string

// CompileShader compiles the vertex color shader from WGSL to SPIR-V words.
func CompileShader() ([]uint32, error) {
	if shaderSource == "" {
		return nil, fmt.Errorf("wgpu: vertex color shader source is empty")
	}
	spirv, err := naga.Compile(shaderSource)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile vertex color shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("wgpu: SPIR-V length %d is not a whole number of words", len(spirv))
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

// pipelineCache holds the shader, layout and one render pipeline per
// primitive topology. Pipelines are created on first use.
type pipelineCache struct {
	device     hal.Device
	format     gputypes.TextureFormat
	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipelines  map[gputypes.PrimitiveTopology]hal.RenderPipeline
}

func newPipelineCache(device hal.Device, format gputypes.TextureFormat) (*pipelineCache, error) {
	words, err := CompileShader()
	if err != nil {
		return nil, err
	}
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sketch_vertex_color_shader",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "sketch_pipe_layout",
	})
	if err != nil {
		device.DestroyShaderModule(shader)
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	return &pipelineCache{
		device:     device,
		format:     format,
		shader:     shader,
		pipeLayout: pipeLayout,
		pipelines:  make(map[gputypes.PrimitiveTopology]hal.RenderPipeline),
	}, nil
}

// get returns the pipeline for topology, creating it if needed.
func (pc *pipelineCache) get(topology gputypes.PrimitiveTopology) (hal.RenderPipeline, error) {
	if p, ok := pc.pipelines[topology]; ok {
		return p, nil
	}
	p, err := pc.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("sketch_pipeline_%d", topology),
		Layout: pc.pipeLayout,
		Vertex: hal.VertexState{
			Module:     pc.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     pc.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    pc.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline for topology %d: %w", topology, err)
	}
	pc.pipelines[topology] = p
	return p, nil
}

// destroy releases all pipeline resources in reverse creation order.
func (pc *pipelineCache) destroy() {
	if pc == nil || pc.device == nil {
		return
	}
	for t, p := range pc.pipelines {
		pc.device.DestroyRenderPipeline(p)
		delete(pc.pipelines, t)
	}
	if pc.pipeLayout != nil {
		pc.device.DestroyPipelineLayout(pc.pipeLayout)
		pc.pipeLayout = nil
	}
	if pc.shader != nil {
		pc.device.DestroyShaderModule(pc.shader)
		pc.shader = nil
	}
}
