/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package balancer provides the load balancer operator. It forwards each
// request to exactly one downstream connection chosen by a balancing
// algorithm, and relays the downstream answers back to the requester.
//
// Configuration example:
//
//	{
//	  "type": "Layer7",
//	  "algorithm": "URLHash"
//	}
//
// Layer4 balancers cannot use content based algorithms: switching the type
// to Layer4 demotes URLHash to RoundRobin.
package balancer
