// Package providers groups the inference backends the relay can call.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/taskify/pkg/providers/model]: candidate definitions, generation parameters, and the built-in candidate table
//   - [github.com/germanamz/taskify/pkg/providers/huggingface]: hosted inference API invoker and response normalizer
//   - [github.com/germanamz/taskify/pkg/providers/tgi]: self-hosted text-generation-inference invoker
//
// Shared HTTP plumbing and the failure taxonomy live in
// [github.com/germanamz/taskify/pkg/modeladapter].
package providers
