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

// Package gateway provides the API gateway operator, the operator carrying
// the routing engine: endpoint matching, action dispatch with method
// translation, response correlation, streams and consumer linkage.
//
// Configuration example:
//
//	{
//	  "title": "users api",
//	  "autoStream": false,
//	  "endpoints": [{
//	    "url": "api/users",
//	    "supportedMethods": ["GET", "POST"],
//	    "protocol": "HTTP",
//	    "actions": [{
//	      "endpoint": {"url": "users", "supportedMethods": ["GET", "POST", "PUT", "PATCH", "DELETE"]},
//	      "method": "Inherit",
//	      "asynchronous": false,
//	      "condition": "method != 'DELETE'"
//	    }]
//	  }]
//	}
package gateway
